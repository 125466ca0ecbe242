package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"golang.org/x/crypto/bcrypt"
)

func (s *MemoryResourceStore) AddUser(ctx context.Context, spec resource.UserSpec) (resource.Principal, error) {
	if err := ctx.Err(); err != nil {
		return resource.Principal{}, err
	}
	if spec.Name == "" {
		return resource.Principal{}, resource.NewError(resource.ErrInvalidArgument, "user name is empty", "")
	}

	cost := s.bcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(spec.Password), cost)
	if err != nil {
		return resource.Principal{}, resource.NewError(resource.ErrInvalidArgument, "cannot hash password: "+err.Error(), spec.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[spec.Name]; ok {
		return resource.Principal{}, resource.NewError(resource.ErrAlreadyExists, "user already exists", spec.Name)
	}

	p := resource.Principal{
		ID:          uuid.NewString(),
		Name:        spec.Name,
		DisplayName: spec.DisplayName,
		Kind:        resource.PrincipalUser,
		Groups:      slices.Clone(spec.Groups),
		Roles:       slices.Clone(spec.Roles),
		Admin:       spec.Admin,
	}
	s.users[spec.Name] = &userRecord{principal: p, hash: hash}
	s.principals[p.ID] = p
	return clonePrincipal(p), nil
}

func (s *MemoryResourceStore) AddGroup(ctx context.Context, name string) (resource.Principal, error) {
	if err := ctx.Err(); err != nil {
		return resource.Principal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := resource.Principal{ID: uuid.NewString(), Name: name, Kind: resource.PrincipalGroup}
	s.principals[p.ID] = p
	return p, nil
}

func (s *MemoryResourceStore) CreateFolder(ctx context.Context, parentID uuid.UUID, name, owner string) (*resource.Entity, error) {
	return s.create(ctx, parentID, &resource.Entity{Kind: resource.KindFolder, Name: name}, owner)
}

func (s *MemoryResourceStore) CreateDocument(ctx context.Context, parentID uuid.UUID, spec resource.DocumentSpec) (*resource.Entity, error) {
	return s.create(ctx, parentID, &resource.Entity{
		Kind:      resource.KindDocument,
		Name:      spec.Name,
		Size:      spec.Size,
		ContentID: spec.ContentID,
		MimeType:  spec.MimeType,
	}, spec.Owner)
}

func (s *MemoryResourceStore) create(ctx context.Context, parentID uuid.UUID, e *resource.Entity, owner string) (*resource.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Name == "" || strings.Contains(e.Name, "/") {
		return nil, resource.NewError(resource.ErrInvalidArgument, "invalid name", e.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, ok := s.entities[parentID]
	if !ok {
		return nil, resource.NotFound("parent", parentID.String())
	}
	if !parent.IsFolder() {
		return nil, resource.NewError(resource.ErrNotFolder, "not a folder", parent.Path)
	}
	if _, exists := s.children[parentID][e.Name]; exists {
		return nil, resource.NewError(resource.ErrAlreadyExists, "entity already exists", resource.JoinPath(parent.Path, e.Name))
	}

	ts := s.now()
	e.ID = uuid.New()
	e.ParentID = parentID
	e.Path = resource.JoinPath(parent.Path, e.Name)
	e.CreatedAt, e.ModifiedAt = ts, ts
	e.CreatedBy, e.ModifiedBy = owner, owner

	s.entities[e.ID] = e
	s.children[parentID][e.Name] = e.ID
	s.paths[e.Path] = e.ID
	if e.IsFolder() {
		s.children[e.ID] = make(map[string]uuid.UUID)
	}
	return e.Clone(), nil
}

func (s *MemoryResourceStore) SetProperty(ctx context.Context, id uuid.UUID, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return resource.NotFound("entity", id.String())
	}
	if s.properties[id] == nil {
		s.properties[id] = make(map[string]string)
	}
	s.properties[id][name] = value
	s.propNames[name] = struct{}{}
	return nil
}

func (s *MemoryResourceStore) DefineRelationType(ctx context.Context, rt resource.RelationType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rt.Name == "" {
		return resource.NewError(resource.ErrInvalidArgument, "relation type name is empty", "")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.relTypes[rt.Name] = rt
	return nil
}

func (s *MemoryResourceStore) Relate(ctx context.Context, rel resource.Relation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.relTypes[rel.Type]; !ok {
		return resource.NotFound("relation type", rel.Type)
	}
	for _, id := range []uuid.UUID{rel.SourceID, rel.TargetID} {
		if _, ok := s.entities[id]; !ok {
			return resource.NotFound("entity", id.String())
		}
	}
	if slices.Contains(s.outgoing[rel.SourceID], rel) {
		return nil
	}
	s.outgoing[rel.SourceID] = append(s.outgoing[rel.SourceID], rel)
	s.incoming[rel.TargetID] = append(s.incoming[rel.TargetID], rel)
	return nil
}

func (s *MemoryResourceStore) SetAccessControl(ctx context.Context, id uuid.UUID, aces []resource.AccessControlEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return resource.NotFound("entity", id.String())
	}
	s.aces[id] = withSource(aces, id)
	return nil
}

func (s *MemoryResourceStore) SetLock(ctx context.Context, id uuid.UUID, lock resource.Lock) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[id]; !ok {
		return resource.NotFound("entity", id.String())
	}
	if lock.Owner == "" {
		delete(s.locks, id)
		return nil
	}
	s.locks[id] = lock
	return nil
}

func (s *MemoryResourceStore) SetReadOnly(ctx context.Context, readOnly bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.readOnly = readOnly
	return nil
}
