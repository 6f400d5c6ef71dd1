package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/gspot/config"
	"github.com/ray-remotestate/gspot/handlers"
	"github.com/ray-remotestate/gspot/session"
	"github.com/ray-remotestate/gspot/utils"
)

func TestRoutesEnforceRoles(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	srv := SetupRoutes(&handlers.Handler{Sessions: session.NewStore(time.Hour)})

	staff, err := utils.GenerateAccessToken(uuid.New(), []string{"staff"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"admin without token", http.MethodGet, "/api/admin/customers", "", http.StatusUnauthorized},
		{"staff export", http.MethodGet, "/api/admin/customers/export", staff, http.StatusForbidden},
		{"staff delete", http.MethodPost, "/api/admin/customers/delete", staff, http.StatusForbidden},
		{"staff create menu item", http.MethodPost, "/api/admin/menu-items", staff, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			srv.Router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	srv := SetupRoutes(&handlers.Handler{Sessions: session.NewStore(time.Hour)})
	if err := srv.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
