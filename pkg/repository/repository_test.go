package repository

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/dittocmis/pkg/auth"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOperation struct {
	operation string
	kind      string
}

// recordingMetrics keeps every RecordOperation call.
type recordingMetrics struct {
	mu  sync.Mutex
	ops []recordedOperation
}

func (m *recordingMetrics) RecordOperation(operation string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kind := "success"
	if err != nil {
		kind = cmis.KindOf(err).String()
	}
	m.ops = append(m.ops, recordedOperation{operation, kind})
}

func (m *recordingMetrics) RecordTypeRefresh(time.Duration, error) {}
func (m *recordingMetrics) SetTypeCount(int)                       {}

func TestNewValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	deps := Dependencies{Store: f.store, Authenticator: auth.New(f.store, auth.Config{}), Types: f.types}

	_, err := New(ctx, Config{}, deps)
	assert.Error(t, err)

	_, err = New(ctx, Config{ID: "x"}, Dependencies{Store: f.store})
	assert.Error(t, err)

	_, err = New(ctx, Config{ID: "x", RootPath: "/missing"}, deps)
	assert.Error(t, err)

	_, err = New(ctx, Config{ID: "x", RootPath: "/site/a.txt"}, deps)
	assert.Error(t, err)

	repo, err := New(ctx, Config{ID: "x", RootPath: "site/"}, deps)
	require.NoError(t, err)
	assert.Equal(t, f.site.ID.String(), repo.RootID())
}

func TestGetRepositoryInfo(t *testing.T) {
	f := newFixtureWithConfig(t, Config{ID: "main", Name: "Main", Description: "test repository"})

	info, err := f.repo.GetRepositoryInfo(context.Background(), f.asBob())
	require.NoError(t, err)

	assert.Equal(t, "main", info.ID)
	assert.Equal(t, "Main", info.Name)
	assert.Equal(t, "test repository", info.Description)
	assert.Equal(t, f.root.ID.String(), info.RootFolderID)
	assert.Equal(t, "dev", info.ProductVersion)
	assert.Equal(t, cmis.Version, info.CmisVersionSupported)
	assert.Equal(t, auth.AnonymousPrincipalID, info.PrincipalAnonymous)
	assert.Equal(t, resource.PrincipalAllOthers, info.PrincipalAnyone)
	assert.True(t, info.Capabilities.GetDescendants)
	assert.True(t, info.Capabilities.GetFolderTree)
	assert.Empty(t, info.LatestChangeLogToken)

	var permissions []string
	for _, p := range info.AclCapabilities.Permissions {
		permissions = append(permissions, p.Permission)
	}
	assert.Contains(t, permissions, cmis.PermissionRead)
	assert.Contains(t, permissions, "ditto:write")
	assert.Contains(t, permissions, "ditto:deny-control")
}

func TestCallContextChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		cc      CallContext
		wantErr error
	}{
		{"valid user", f.asAlice(), nil},
		{"anonymous", CallContext{RepositoryID: "main"}, nil},
		{"unknown repository", CallContext{RepositoryID: "nope", Username: "alice", Password: "secret"}, cmis.ErrNotFound},
		{"wrong password", f.as("alice", "wrong"), cmis.ErrUnauthorized},
		{"unknown user", f.as("mallory", "secret"), cmis.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.repo.GetObject(ctx, tt.cc, f.site.ID.String(), ObjectOptions{})
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetObjectErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetAccessControl(ctx, f.other.ID, []resource.AccessControlEntry{
		{PrincipalID: f.alice.ID, Denied: resource.PermissionRead},
	}))

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"empty id", "", cmis.ErrInvalidArgument},
		{"not a uuid", "a.txt", cmis.ErrNotFound},
		{"unknown uuid", "00000000-0000-0000-0000-000000000001", cmis.ErrNotFound},
		{"unreadable", f.other.ID.String(), cmis.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.repo.GetObject(ctx, f.asAlice(), tt.id, ObjectOptions{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetObjectByPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		path    string
		wantID  string
		wantErr error
	}{
		{"/", f.root.ID.String(), nil},
		{"/site/sub/c.txt", f.docC.ID.String(), nil},
		{"/site/sub/", f.sub.ID.String(), nil},
		{"/site/missing", "", cmis.ErrNotFound},
		{"", "", cmis.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			obj, err := f.repo.GetObjectByPath(ctx, f.asAlice(), tt.path, ObjectOptions{Filter: "cmis:path"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, obj.ID())
		})
	}
}

func TestGetProperties(t *testing.T) {
	f := newFixture(t)

	props, err := f.repo.GetProperties(context.Background(), f.asAlice(), f.docA.ID.String(), "cmis:contentStreamLength, ditto:Owner")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		cmis.PropObjectID, cmis.PropObjectTypeID, cmis.PropBaseTypeID,
		cmis.PropContentStreamLength, "ditto:Owner",
	}, propertyIDs(props))
	assert.Equal(t, "alice", props.Value("ditto:Owner"))
}

func TestTypeOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cc := f.asBob()

	def, err := f.repo.GetTypeDefinition(ctx, cc, "ditto:REL_LINKS")
	require.NoError(t, err)
	assert.Equal(t, string(cmis.BaseTypeRelationship), def.ParentTypeID)
	assert.False(t, def.Creatable)

	_, err = f.repo.GetTypeDefinition(ctx, cc, "ditto:nope")
	assert.ErrorIs(t, err, cmis.ErrNotFound)

	bases, err := f.repo.GetTypeChildren(ctx, cc, "", false, 0, 0)
	require.NoError(t, err)
	require.Len(t, bases.Types, 3)
	assert.Equal(t, string(cmis.BaseTypeFolder), bases.Types[0].ID)

	tree, err := f.repo.GetTypeDescendants(ctx, cc, string(cmis.BaseTypeRelationship), -1, false)
	require.NoError(t, err)
	assert.Len(t, tree, 2)

	_, err = f.repo.GetTypeDescendants(ctx, cc, string(cmis.BaseTypeRelationship), 0, false)
	assert.ErrorIs(t, err, cmis.ErrInvalidArgument)
}

func TestGetContentStream(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stream, err := f.repo.GetContentStream(ctx, f.asAlice(), f.docA.ID.String())
	require.NoError(t, err)
	defer stream.Stream.Close()

	body, err := io.ReadAll(stream.Stream)
	require.NoError(t, err)
	assert.Equal(t, testBody, body)
	assert.Equal(t, "a.txt", stream.FileName)
	assert.EqualValues(t, len(testBody), stream.Length)
	assert.Contains(t, stream.MimeType, "text/plain")

	_, err = f.repo.GetContentStream(ctx, f.asAlice(), f.docB.ID.String())
	assert.ErrorIs(t, err, cmis.ErrNotFound)

	_, err = f.repo.GetContentStream(ctx, f.asAlice(), f.site.ID.String())
	assert.ErrorIs(t, err, cmis.ErrInvalidArgument)

	require.NoError(t, f.blobs.Delete(ctx, "content-a"))
	_, err = f.repo.GetContentStream(ctx, f.asAlice(), f.docA.ID.String())
	assert.ErrorIs(t, err, cmis.ErrNotFound)
}

func TestUnsupportedOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cc := f.asAdmin()
	id := f.docA.ID.String()

	calls := map[string]func() error{
		"CreateDocument": func() error { _, err := f.repo.CreateDocument(ctx, cc, id, nil, nil); return err },
		"CreateFolder":   func() error { _, err := f.repo.CreateFolder(ctx, cc, id, nil); return err },
		"UpdateProperties": func() error {
			return f.repo.UpdateProperties(ctx, cc, id, map[string]any{cmis.PropName: "x"})
		},
		"MoveObject":    func() error { return f.repo.MoveObject(ctx, cc, id, f.sub.ID.String()) },
		"DeleteObject":  func() error { return f.repo.DeleteObject(ctx, cc, id) },
		"DeleteTree":    func() error { return f.repo.DeleteTree(ctx, cc, f.sub.ID.String()) },
		"CheckOut":      func() error { _, err := f.repo.CheckOut(ctx, cc, id); return err },
		"Query":         func() error { _, err := f.repo.Query(ctx, cc, "SELECT * FROM cmis:document"); return err },
		"ApplyACL":      func() error { _, err := f.repo.ApplyACL(ctx, cc, id, nil, nil); return err },
		"GetRenditions": func() error { _, err := f.repo.GetRenditions(ctx, cc, id); return err },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), cmis.ErrNotSupported)
		})
	}

	// the call context is still checked first
	err := f.repo.DeleteObject(ctx, f.as("alice", "wrong"), id)
	assert.ErrorIs(t, err, cmis.ErrUnauthorized)
}

func TestOperationsAreRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := &recordingMetrics{}

	repo, err := New(ctx, Config{ID: "main"}, Dependencies{
		Store:         f.store,
		Authenticator: auth.New(f.store, auth.Config{}),
		Types:         f.types,
		Metrics:       m,
	})
	require.NoError(t, err)

	_, err = repo.GetObject(ctx, f.asAlice(), f.site.ID.String(), ObjectOptions{})
	require.NoError(t, err)
	_, err = repo.GetObject(ctx, f.asAlice(), "missing", ObjectOptions{})
	require.Error(t, err)
	_, err = repo.GetContentStream(ctx, f.asAlice(), f.docA.ID.String())
	require.Error(t, err, "no content store configured")

	assert.Equal(t, []recordedOperation{
		{"GetObject", "success"},
		{"GetObject", "objectNotFound"},
		{"GetContentStream", "objectNotFound"},
	}, m.ops)
}
