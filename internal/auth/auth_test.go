package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/examtrainer/backend/internal/auth"
)

func newService(ttl time.Duration) *auth.Service {
	return auth.NewService("test-secret", ttl, map[string]string{
		"ana":  "secret",
		"luis": "clave",
	})
}

func TestLogin(t *testing.T) {
	svc := newService(time.Hour)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"valid", "ana", "secret", false},
		{"second user", "luis", "clave", false},
		{"wrong password", "ana", "clave", true},
		{"unknown user", "nadie", "secret", true},
		{"empty credentials", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Login(tt.username, tt.password)
			if tt.wantErr {
				if !errors.Is(err, auth.ErrInvalidCredentials) {
					t.Fatalf("expected ErrInvalidCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token == "" {
				t.Fatal("expected a token")
			}
		})
	}
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	svc := newService(time.Hour)

	token, err := svc.Login("ana", "secret")
	if err != nil {
		t.Fatal(err)
	}
	username, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if username != "ana" {
		t.Errorf("expected username ana, got %q", username)
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	svc := newService(-time.Minute)

	token, err := svc.Login("ana", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for an expired token, got %v", err)
	}
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	token, err := newService(time.Hour).Login("ana", "secret")
	if err != nil {
		t.Fatal(err)
	}

	other := auth.NewService("different-secret", time.Hour, map[string]string{"ana": "secret"})
	if _, err := other.Authenticate(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for a foreign signature, got %v", err)
	}
}

func TestAuthenticate_Garbage(t *testing.T) {
	svc := newService(time.Hour)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Authenticate(token); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestMiddleware(t *testing.T) {
	svc := newService(time.Hour)
	token, err := svc.Login("ana", "secret")
	if err != nil {
		t.Fatal(err)
	}

	var gotUsername string
	handler := auth.Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUsername = auth.UsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", token, http.StatusUnauthorized},
		{"bad token", "Bearer garbage", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUsername = ""
			req := httptest.NewRequest(http.MethodGet, "/api/progress", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantStatus == http.StatusOK && gotUsername != "ana" {
				t.Errorf("expected username ana in context, got %q", gotUsername)
			}
		})
	}
}

func TestUsernameFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := auth.UsernameFromContext(req.Context()); got != "" {
		t.Errorf("expected empty username, got %q", got)
	}
}
