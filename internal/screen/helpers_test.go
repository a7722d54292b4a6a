package screen

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vcscsvcscs/dental-console/internal/apiclient"
	"github.com/vcscsvcscs/dental-console/internal/audit"
	"github.com/vcscsvcscs/dental-console/internal/service"
	"github.com/vcscsvcscs/dental-console/internal/session"
	"github.com/vcscsvcscs/dental-console/pkg/model"
	"go.uber.org/zap"
)

// fakeBackend serves canned JSON per "METHOD /path" and counts hits
type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
	bodies map[string][]byte
}

func (b *fakeBackend) handle(key string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[key] = h
}

func (b *fakeBackend) json(key string, status int, body string) {
	b.handle(key, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func (b *fakeBackend) lastBody(key string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[key]
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	buf, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.hits[key]++
	b.bodies[key] = buf
	h, ok := b.routes[key]
	b.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

var testNow = time.Date(2025, 1, 10, 8, 30, 0, 0, time.UTC)

func newTestDeps(t *testing.T) (Deps, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{
		routes: map[string]http.HandlerFunc{},
		hits:   map[string]int{},
		bodies: map[string][]byte{},
	}
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)

	logger := zap.NewNop()
	sessions := session.NewProvider(session.NewMemoryStorage(), nil, logger)
	require.NoError(t, sessions.Begin(model.Session{Token: "tok", Role: model.RoleAdmin, UserID: "AD-1"}))

	client, err := apiclient.NewClient(server.URL, sessions, logger)
	require.NoError(t, err)

	return Deps{
		Admin:         service.NewAdminService(client, logger),
		Doctor:        service.NewDoctorService(client, logger),
		Patient:       service.NewPatientService(client, logger),
		Notifications: service.NewNotificationService(client, logger),
		Audit:         audit.NewLogger(sessions, logger),
		Logger:        logger,
		Now:           func() time.Time { return testNow },
		Location:      time.UTC,
	}, backend
}
