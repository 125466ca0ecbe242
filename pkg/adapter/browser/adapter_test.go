package browser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/dittocmis/internal/ratelimiter"
	"github.com/marmos91/dittocmis/pkg/auth"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/metrics"
	"github.com/marmos91/dittocmis/pkg/registry"
	"github.com/marmos91/dittocmis/pkg/repository"
	"github.com/marmos91/dittocmis/pkg/store/content"
	contentmemory "github.com/marmos91/dittocmis/pkg/store/content/memory"
	"github.com/marmos91/dittocmis/pkg/store/resource"
	"github.com/marmos91/dittocmis/pkg/store/resource/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const body = "hello, world"

type testEnv struct {
	adapter *BrowserAdapter
	site    *resource.Entity
	doc     *resource.Entity
	empty   *resource.Entity
	rel     string
}

// recordingHTTPMetrics keeps the routes it saw.
type recordingHTTPMetrics struct {
	mu      sync.Mutex
	routes  []string
	limited int
}

func (m *recordingHTTPMetrics) RecordRequest(route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route+" "+http.StatusText(status))
}

func (m *recordingHTTPMetrics) RecordRateLimited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limited++
}

func newEnv(t *testing.T, config Config, m *recordingHTTPMetrics) *testEnv {
	t.Helper()
	ctx := context.Background()

	store := memory.NewMemoryResourceStore(memory.MemoryResourceStoreConfig{BcryptCost: bcrypt.MinCost})
	blobs := contentmemory.NewMemoryContentStore()

	alice, err := store.AddUser(ctx, resource.UserSpec{Name: "alice", Password: "secret"})
	require.NoError(t, err)

	env := &testEnv{}
	env.site, err = store.CreateFolder(ctx, store.RootID(), "site", alice.ID)
	require.NoError(t, err)
	env.doc, err = store.CreateDocument(ctx, env.site.ID, resource.DocumentSpec{Name: "hello.txt", Owner: alice.ID, Size: int64(len(body)), ContentID: "c1"})
	require.NoError(t, err)
	env.empty, err = store.CreateDocument(ctx, env.site.ID, resource.DocumentSpec{Name: "empty.txt", Owner: alice.ID})
	require.NoError(t, err)
	require.NoError(t, blobs.WriteContent(ctx, content.ContentID("c1"), []byte(body)))
	require.NoError(t, store.DefineRelationType(ctx, resource.RelationType{Name: "refers"}))
	rel := resource.Relation{SourceID: env.doc.ID, TargetID: env.empty.ID, Type: "refers"}
	require.NoError(t, store.Relate(ctx, rel))
	env.rel = repository.EncodeRelationshipID(rel)

	reg := registry.NewRegistry(registry.Options{Auth: auth.Config{AllowAnonymous: true}})
	require.NoError(t, reg.RegisterResourceStore(ctx, "mem", store))
	require.NoError(t, reg.RegisterContentStore("blobs", blobs))
	require.NoError(t, reg.AddRepository(ctx, &registry.RepositoryConfig{ID: "main", ResourceStore: "mem", ContentStore: "blobs"}))

	var hm metrics.HTTPMetrics
	if m != nil {
		hm = m
	}
	env.adapter = New(config, hm)
	env.adapter.SetRegistry(reg)
	return env
}

func (env *testEnv) do(method, target string, withAuth bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if withAuth {
		req.SetBasicAuth("alice", "secret")
	}
	rec := httptest.NewRecorder()
	env.adapter.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRepositoryRoutes(t *testing.T) {
	env := newEnv(t, Config{}, nil)

	rec := env.do(http.MethodGet, "/", false)
	require.Equal(t, http.StatusOK, rec.Code)
	infos := decode[[]cmis.RepositoryInfo](t, rec)
	require.Len(t, infos, 1)
	assert.Equal(t, "main", infos[0].ID)

	rec = env.do(http.MethodGet, "/main", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "main", decode[cmis.RepositoryInfo](t, rec).ID)

	rec = env.do(http.MethodGet, "/nope", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "objectNotFound", decode[errorBody](t, rec).Exception)
}

func TestObjectRoutes(t *testing.T) {
	env := newEnv(t, Config{}, nil)
	site := "/main/objects/" + env.site.ID.String()
	doc := "/main/objects/" + env.doc.ID.String()

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"object", http.MethodGet, site + "?includeAllowableActions=true&includeACL=true", http.StatusOK},
		{"properties", http.MethodGet, doc + "/properties?filter=cmis:name", http.StatusOK},
		{"children", http.MethodGet, site + "/children?maxItems=1", http.StatusOK},
		{"descendants", http.MethodGet, site + "/descendants", http.StatusOK},
		{"tree", http.MethodGet, site + "/tree?depth=1", http.StatusOK},
		{"parent", http.MethodGet, site + "/parent", http.StatusOK},
		{"parents", http.MethodGet, doc + "/parents?includeRelativePathSegment=true", http.StatusOK},
		{"actions", http.MethodGet, doc + "/actions", http.StatusOK},
		{"acl", http.MethodGet, doc + "/acl?onlyBasicPermissions=true", http.StatusOK},
		{"relationships", http.MethodGet, doc + "/relationships?relationshipDirection=either", http.StatusOK},
		{"relationship object", http.MethodGet, "/main/objects/" + env.rel, http.StatusOK},
		{"by path", http.MethodGet, "/main/path?path=/site/hello.txt", http.StatusOK},
		{"types", http.MethodGet, "/main/types", http.StatusOK},
		{"type", http.MethodGet, "/main/types/cmis:document", http.StatusOK},
		{"type descendants", http.MethodGet, "/main/types/cmis:relationship/descendants", http.StatusOK},
		{"zero depth", http.MethodGet, site + "/descendants?depth=0", http.StatusBadRequest},
		{"bad integer", http.MethodGet, site + "/children?maxItems=many", http.StatusBadRequest},
		{"bad direction", http.MethodGet, doc + "/relationships?relationshipDirection=up", http.StatusBadRequest},
		{"children of document", http.MethodGet, doc + "/children", http.StatusBadRequest},
		{"missing object", http.MethodGet, "/main/objects/REL_garbage", http.StatusNotFound},
		{"unknown type", http.MethodGet, "/main/types/ditto:nope", http.StatusNotFound},
		{"delete", http.MethodDelete, doc, http.StatusMethodNotAllowed},
		{"update", http.MethodPatch, doc, http.StatusMethodNotAllowed},
		{"set content", http.MethodPut, doc + "/content", http.StatusMethodNotAllowed},
		{"query", http.MethodPost, "/main/query", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.method, tt.target, true)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestChildrenResponse(t *testing.T) {
	env := newEnv(t, Config{}, nil)

	rec := env.do(http.MethodGet, "/main/objects/"+env.site.ID.String()+"/children?filter=cmis:name&includePathSegment=true", true)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[cmis.ObjectInFolderList](t, rec)
	require.Len(t, list.Objects, 2)
	assert.Equal(t, "empty.txt", list.Objects[0].PathSegment)
	assert.Equal(t, "hello.txt", list.Objects[1].PathSegment)
	assert.Len(t, list.Objects[0].Object.Properties, 4)
	require.NotNil(t, list.NumItems)
	assert.EqualValues(t, 2, *list.NumItems)
}

func TestContentRoute(t *testing.T) {
	env := newEnv(t, Config{}, nil)

	rec := env.do(http.MethodGet, "/main/objects/"+env.doc.ID.String()+"/content", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, `inline; filename=hello.txt`, rec.Header().Get("Content-Disposition"))

	rec = env.do(http.MethodHead, "/main/objects/"+env.doc.ID.String()+"/content", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = env.do(http.MethodGet, "/main/objects/"+env.empty.ID.String()+"/content", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/main/objects/"+env.site.ID.String()+"/content", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthentication(t *testing.T) {
	env := newEnv(t, Config{Realm: "test"}, nil)
	target := "/main/objects/" + env.site.ID.String()

	rec := env.do(http.MethodGet, target, false)
	assert.Equal(t, http.StatusOK, rec.Code, "anonymous reads are allowed")

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.SetBasicAuth("alice", "wrong")
	rec = httptest.NewRecorder()
	env.adapter.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "permissionDenied", decode[errorBody](t, rec).Exception)
}

func TestMissingCredentialsChallenge(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMemoryResourceStore(memory.MemoryResourceStoreConfig{BcryptCost: bcrypt.MinCost})
	reg := registry.NewRegistry(registry.Options{})
	require.NoError(t, reg.RegisterResourceStore(ctx, "mem", store))
	require.NoError(t, reg.AddRepository(ctx, &registry.RepositoryConfig{ID: "main", ResourceStore: "mem"}))

	a := New(Config{Realm: "test"}, nil)
	a.SetRegistry(reg)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/main", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="test"`, rec.Header().Get("WWW-Authenticate"))
}

func TestRateLimitAndMetrics(t *testing.T) {
	m := &recordingHTTPMetrics{}
	env := newEnv(t, Config{RateLimit: ratelimiter.Config{RequestsPerSecond: 0.1, Burst: 2}}, m)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/", false).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/nope", false).Code)

	rec := env.do(http.MethodGet, "/", false)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "tooManyRequests", decode[errorBody](t, rec).Exception)

	assert.Equal(t, 1, m.limited)
	assert.Equal(t, []string{"/ OK", "/:repo Not Found", "/ Too Many Requests"}, m.routes)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		kind cmis.Kind
		want int
	}{
		{cmis.KindNotFound, http.StatusNotFound},
		{cmis.KindUnauthorized, http.StatusForbidden},
		{cmis.KindInvalidArgument, http.StatusBadRequest},
		{cmis.KindNotSupported, http.StatusMethodNotAllowed},
		{cmis.KindRuntime, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.kind))
		})
	}
}

func TestServeAndStop(t *testing.T) {
	env := newEnv(t, Config{Port: 18931, ShutdownTimeout: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.adapter.Serve(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://127.0.0.1:18931/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
	assert.NoError(t, env.adapter.Stop(context.Background()), "second stop is a no-op")
	assert.Equal(t, "CMIS-Browser", env.adapter.Protocol())
	assert.Equal(t, 18931, env.adapter.Port())
}
