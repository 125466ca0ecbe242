package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marmos91/dittocmis/pkg/auth"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/provider"
	"github.com/marmos91/dittocmis/pkg/store/content"
	contentmemory "github.com/marmos91/dittocmis/pkg/store/content/memory"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/marmos91/dittocmis/pkg/store/resource/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// brokenProvider always fails.
type brokenProvider struct{}

func (brokenProvider) Name() string   { return "broken" }
func (brokenProvider) Writable() bool { return false }
func (brokenProvider) Value(context.Context, resource.Session, *resource.Entity) (string, error) {
	return "", errors.New("backend unavailable")
}

// panickingProvider panics on every call.
type panickingProvider struct{}

func (panickingProvider) Name() string   { return "panicking" }
func (panickingProvider) Writable() bool { return false }
func (panickingProvider) Value(context.Context, resource.Session, *resource.Entity) (string, error) {
	panic("nil map")
}

// fixture is the tree most tests run against:
//
//	/                  ALL_OTHERS read+view
//	/site              editors write; Title=Site
//	/site/a.txt        42 bytes, related -> /other/d2.txt
//	/site/b.txt        empty
//	/site/sub
//	/site/sub/c.txt
//	/other
//	/other/d2.txt
type fixture struct {
	store   *memory.MemoryResourceStore
	blobs   *contentmemory.MemoryContentStore
	types   *TypeRegistry
	repo    *Repository
	alice   resource.Principal
	bob     resource.Principal
	admin   resource.Principal
	editors resource.Principal

	root  *resource.Entity
	site  *resource.Entity
	docA  *resource.Entity
	docB  *resource.Entity
	sub   *resource.Entity
	docC  *resource.Entity
	other *resource.Entity
	docD2 *resource.Entity
}

var testBody = []byte("Lorem ipsum dolor sit amet, consectetur ad")

func newFixture(t *testing.T) *fixture {
	return newFixtureWithConfig(t, Config{ID: "main", Name: "Main"})
}

func newFixtureWithConfig(t *testing.T, config Config) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store: memory.NewMemoryResourceStore(memory.MemoryResourceStoreConfig{BcryptCost: bcrypt.MinCost}),
		blobs: contentmemory.NewMemoryContentStore(),
	}
	s := f.store
	var err error

	f.editors, err = s.AddGroup(ctx, "editors")
	require.NoError(t, err)
	f.alice, err = s.AddUser(ctx, resource.UserSpec{Name: "alice", DisplayName: "Alice Liddell", Password: "secret", Groups: []string{f.editors.ID}})
	require.NoError(t, err)
	f.bob, err = s.AddUser(ctx, resource.UserSpec{Name: "bob", Password: "builder"})
	require.NoError(t, err)
	f.admin, err = s.AddUser(ctx, resource.UserSpec{Name: "admin", DisplayName: "Administrator", Password: "admin", Admin: true})
	require.NoError(t, err)

	session, err := s.OpenSession(ctx, f.admin)
	require.NoError(t, err)
	f.root, err = session.Entity(ctx, s.RootID())
	require.NoError(t, err)
	require.NoError(t, session.Close())

	f.site, err = s.CreateFolder(ctx, s.RootID(), "site", f.alice.ID)
	require.NoError(t, err)
	f.docA, err = s.CreateDocument(ctx, f.site.ID, resource.DocumentSpec{Name: "a.txt", Owner: f.alice.ID, Size: int64(len(testBody)), ContentID: "content-a"})
	require.NoError(t, err)
	f.docB, err = s.CreateDocument(ctx, f.site.ID, resource.DocumentSpec{Name: "b.txt", Owner: f.alice.ID})
	require.NoError(t, err)
	f.sub, err = s.CreateFolder(ctx, f.site.ID, "sub", f.alice.ID)
	require.NoError(t, err)
	f.docC, err = s.CreateDocument(ctx, f.sub.ID, resource.DocumentSpec{Name: "c.txt", Owner: f.alice.ID})
	require.NoError(t, err)
	f.other, err = s.CreateFolder(ctx, s.RootID(), "other", resource.SystemPrincipalID)
	require.NoError(t, err)
	f.docD2, err = s.CreateDocument(ctx, f.other.ID, resource.DocumentSpec{Name: "d2.txt", Owner: f.bob.ID})
	require.NoError(t, err)

	require.NoError(t, s.SetAccessControl(ctx, f.site.ID, []resource.AccessControlEntry{
		{PrincipalID: f.editors.ID, Granted: resource.PermissionWrite},
	}))
	require.NoError(t, s.SetProperty(ctx, f.site.ID, "Title", "Site"))
	require.NoError(t, s.SetProperty(ctx, f.docA.ID, "Owner", "alice"))
	require.NoError(t, s.DefineRelationType(ctx, resource.RelationType{Name: "related"}))
	require.NoError(t, s.DefineRelationType(ctx, resource.RelationType{Name: "links", ContentDerived: true}))
	require.NoError(t, s.Relate(ctx, resource.Relation{SourceID: f.docA.ID, TargetID: f.docD2.ID, Type: "related"}))
	require.NoError(t, f.blobs.WriteContent(ctx, content.ContentID("content-a"), testBody))

	providers, err := provider.NewRegistry(
		provider.NewSizeProvider(),
		provider.NewPropertyProvider("title", "Title", true),
		brokenProvider{},
	)
	require.NoError(t, err)

	f.types, err = NewTypeRegistry(ctx, s, providers, TypeRegistryConfig{})
	require.NoError(t, err)

	f.repo, err = New(ctx, config, Dependencies{
		Store:         s,
		Authenticator: auth.New(s, auth.Config{CacheTTL: time.Minute, AllowAnonymous: true}),
		Types:         f.types,
		Content:       f.blobs,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) as(name, password string) CallContext {
	return CallContext{RepositoryID: f.repo.ID(), Username: name, Password: password}
}

func (f *fixture) asAlice() CallContext { return f.as("alice", "secret") }
func (f *fixture) asBob() CallContext   { return f.as("bob", "builder") }
func (f *fixture) asAdmin() CallContext { return f.as("admin", "admin") }

// propertyIDs returns the ids of a property bag as a set-like slice.
func propertyIDs(props cmis.Properties) []string {
	return props.IDs()
}

// names returns the cmis:name of each projected child.
func childNames(list *cmis.ObjectInFolderList) []string {
	out := make([]string, len(list.Objects))
	for i, o := range list.Objects {
		out[i], _ = o.Object.Properties.Value(cmis.PropName).(string)
	}
	return out
}

// relation is the fixture's only stored relation.
func (f *fixture) relation() resource.Relation {
	return resource.Relation{SourceID: f.docA.ID, TargetID: f.docD2.ID, Type: "related"}
}
