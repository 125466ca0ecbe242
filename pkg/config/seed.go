package config

import (
	"context"
	"fmt"
	pathpkg "path"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/content"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

// demoDocument is a document of the demo tree.
type demoDocument struct {
	folder string
	name   string
	body   string
}

var demoFolders = []string{"/Sites", "/Sites/marketing", "/Sites/engineering", "/Shared"}

var demoDocuments = []demoDocument{
	{"/Sites/marketing", "launch-plan.md", "# Launch plan\n\nShip it on Monday.\n"},
	{"/Sites/marketing", "press-release.txt", "For immediate release.\n"},
	{"/Sites/engineering", "design.md", "# Design\n\nSee the shared readme.\n"},
	{"/Sites/engineering", "empty.txt", ""},
	{"/Shared", "readme.txt", "Files shared with everyone.\n"},
}

// SeedDemo fills a fresh store with a small tree: two sites with a few
// documents, a shared folder, the "references" and "links" relation types
// and a relation between two documents. Bodies go to blobs.
func SeedDemo(ctx context.Context, store resource.Builder, blobs content.ContentStore) error {
	folders := map[string]uuid.UUID{"/": store.RootID()}
	for _, p := range demoFolders {
		f, err := store.CreateFolder(ctx, folders[pathpkg.Dir(p)], pathpkg.Base(p), resource.SystemPrincipalID)
		if err != nil {
			return fmt.Errorf("seed folder %s: %w", p, err)
		}
		folders[p] = f.ID
	}

	docs := make(map[string]uuid.UUID)
	for _, d := range demoDocuments {
		spec := resource.DocumentSpec{Name: d.name, Owner: resource.SystemPrincipalID, Size: int64(len(d.body))}
		if d.body != "" {
			spec.ContentID = uuid.NewString()
			if err := blobs.WriteContent(ctx, content.ContentID(spec.ContentID), []byte(d.body)); err != nil {
				return fmt.Errorf("seed content of %s: %w", d.name, err)
			}
		}
		e, err := store.CreateDocument(ctx, folders[d.folder], spec)
		if err != nil {
			return fmt.Errorf("seed document %s: %w", d.name, err)
		}
		docs[e.Path] = e.ID
	}

	if err := store.SetProperty(ctx, folders["/Sites/marketing"], "Title", "Marketing"); err != nil {
		return err
	}
	if err := store.SetProperty(ctx, folders["/Sites/engineering"], "Title", "Engineering"); err != nil {
		return err
	}

	if err := store.DefineRelationType(ctx, resource.RelationType{Name: "references"}); err != nil {
		return err
	}
	if err := store.DefineRelationType(ctx, resource.RelationType{Name: "links", ContentDerived: true}); err != nil {
		return err
	}
	return store.Relate(ctx, resource.Relation{
		SourceID: docs["/Sites/engineering/design.md"],
		TargetID: docs["/Shared/readme.txt"],
		Type:     "references",
	})
}
