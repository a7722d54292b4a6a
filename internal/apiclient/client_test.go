package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCreds struct {
	token   string
	expired int
}

func (f *fakeCreds) Token() (string, bool) {
	return f.token, f.token != ""
}

func (f *fakeCreds) Expire() error {
	f.expired++
	f.token = ""
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, creds *fakeCreds) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL+"/", creds, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestClient_GetSendsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	}, &fakeCreds{token: "tok"})

	body, err := c.Get(context.Background(), "/api/admin/appointments", url.Values{"limit": {"50"}})
	require.NoError(t, err)

	assert.JSONEq(t, `{"items":[]}`, string(body))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "limit=50", gotQuery)
}

func TestClient_NoTokenSendsNothing(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, &fakeCreds{})

	_, err := c.Get(context.Background(), "/api/doctor/cases", nil)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, called)
	assert.Equal(t, SessionExpiredMessage, Describe(err, "fallback"))
}

func TestClient_PostPublicOmitsAuthorization(t *testing.T) {
	var gotAuth string
	var payload map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &payload)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"abc"}`))
	}, &fakeCreds{})

	_, err := c.PostPublic(context.Background(), "/api/auth/login", map[string]string{"email": "a@b.c"})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "a@b.c", payload["email"])
}

func TestClient_Unauthorized_ExpiresSession(t *testing.T) {
	creds := &fakeCreds{token: "stale"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"jwt expired"}`))
	}, creds)

	_, err := c.Get(context.Background(), "/api/patient/dashboard", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 1, creds.expired)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, SessionExpiredMessage, Describe(err, "fallback"))
}

func TestClient_Forbidden(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, &fakeCreds{token: "tok"})

	_, err := c.Get(context.Background(), "/api/admin/dashboard", nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, ForbiddenMessage, Describe(err, "fallback"))
}

func TestClient_ConflictCarriesSuggestions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"conflict":true,"message":"Doctor is busy","suggestedSlots":[
			{"date":"2026-10-20","startTime":"09:00:00","endTime":"09:30:00","predictedDurationMin":30},
			{"date":"2026-10-20","startTime":"10:00:00","endTime":"10:30:00"}]}`))
	}, &fakeCreds{token: "tok"})

	_, err := c.Post(context.Background(), "/api/admin/appointments", map[string]string{})
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Doctor is busy", conflict.Message)
	require.Len(t, conflict.SuggestedSlots, 2)
	assert.Equal(t, "09:00:00", conflict.SuggestedSlots[0].StartTime)
	assert.Equal(t, 30, conflict.SuggestedSlots[0].PredictedDurationMin)
	assert.Equal(t, 0, conflict.SuggestedSlots[1].PredictedDurationMin)
	assert.Equal(t, http.StatusConflict, StatusCode(err))
}

func TestClient_ConflictWithoutFlagIsPlainError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"Duplicate SKU"}`))
	}, &fakeCreds{token: "tok"})

	_, err := c.Post(context.Background(), "/api/admin/inventory", map[string]string{})
	var conflict *ConflictError
	assert.False(t, errors.As(err, &conflict))
	assert.Equal(t, "Duplicate SKU", Describe(err, "fallback"))
}

func TestClient_ErrorMessageSources(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"json message", "application/json", `{"message":"Invalid date"}`, "Invalid date"},
		{"text body", "text/plain", "gateway exploded", "gateway exploded"},
		{"json header with html body", "application/json", "<html>oops</html>", "<html>oops</html>"},
		{"empty body", "", "", "Request failed with status 500."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tt.body))
			}, &fakeCreds{token: "tok"})

			_, err := c.Patch(context.Background(), "/api/cases/1/stage", map[string]string{})
			require.Error(t, err)
			assert.Equal(t, tt.want, Describe(err, "fallback"))
			assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
		})
	}
}

func TestClient_InvalidSuccessBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}, &fakeCreds{token: "tok"})

	_, err := c.Get(context.Background(), "/api/doctor/patients", nil)
	require.Error(t, err)
	assert.Equal(t, "Server returned an invalid response.", Describe(err, "fallback"))
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c, err := NewClient(server.URL, &fakeCreds{token: "tok"}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/api/admin/dashboard", nil)
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, "Failed to load dashboard.", Describe(err, "Failed to load dashboard."))
	assert.Equal(t, 0, StatusCode(err))
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, &fakeCreds{token: "tok"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/api/admin/dashboard", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("  ", &fakeCreds{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient("http://localhost:4000", nil, zap.NewNop())
	assert.Error(t, err)

	c, err := NewClient("http://localhost:4000///", &fakeCreds{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", c.BaseURL())
}

func TestClient_RejectedLoginDoesNotExpire(t *testing.T) {
	creds := &fakeCreds{token: "current"}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}, creds)

	_, err := c.PostPublic(context.Background(), "/api/auth/login", map[string]string{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, creds.expired)
	assert.Equal(t, "Invalid credentials", Describe(err, "fallback"))
}
