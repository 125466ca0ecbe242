package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerHealth(t *testing.T) {
	tests := []struct {
		name   string
		health HealthFunc
		code   int
	}{
		{"nil health", nil, http.StatusOK},
		{"healthy", func(context.Context) error { return nil }, http.StatusOK},
		{"unhealthy", func(context.Context) error { return errors.New("store down") }, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(ServerConfig{Health: tt.health})
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestServerDefaults(t *testing.T) {
	srv := NewServer(ServerConfig{})
	assert.Equal(t, 9090, srv.Port())
}

func TestNoopMetrics(t *testing.T) {
	m := NewNoopRepositoryMetrics()
	m.RecordOperation("GetObject", 0, nil)
	m.RecordTypeRefresh(0, errors.New("x"))
	m.SetTypeCount(3)

	h := NewNoopHTTPMetrics()
	h.RecordRequest("/", 200, 0)
	h.RecordRateLimited()
}
