package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ray-remotestate/gspot/config"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/session"
)

func signed(t *testing.T, typ string, roles []string, expires time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: uuid.New(),
		Roles:  roles,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.SecretKey)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAuthAndRoles(t *testing.T) {
	config.SecretKey = []byte("test-secret")

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetAuthenticatedUser(r)
		if err != nil || len(claims.Roles) == 0 {
			t.Error("claims missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	})
	adminOnly := AuthMiddleware(RoleBasedMiddleware(models.RoleAdmin)(ok))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, TokenAccess, []string{"admin"}, time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"refresh token", "Bearer " + signed(t, TokenRefresh, []string{"admin"}, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"untyped", "Bearer " + signed(t, "", []string{"admin"}, time.Now().Add(time.Minute)), http.StatusUnauthorized},
		{"staff", "Bearer " + signed(t, TokenAccess, []string{"staff"}, time.Now().Add(time.Minute)), http.StatusForbidden},
		{"admin", "Bearer " + signed(t, TokenAccess, []string{"ADMIN"}, time.Now().Add(time.Minute)), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/customers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			adminOnly.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSessionMiddlewareIssuesAndReusesCookie(t *testing.T) {
	store := session.NewStore(time.Hour)
	var seen []*session.Session
	h := SessionMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := GetSession(r)
		if !ok {
			t.Fatal("no session in context")
		}
		seen = append(seen, sess)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie {
		t.Fatalf("expected a session cookie, got %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	refreshed := rec.Result().Cookies()
	if len(refreshed) != 1 || refreshed[0].Value != cookies[0].Value {
		t.Errorf("known session should be re-issued unchanged, got %v", refreshed)
	} else if refreshed[0].MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("refreshed max-age = %d", refreshed[0].MaxAge)
	}
	if seen[0] != seen[1] {
		t.Error("expected the same session on the second request")
	}

	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen[2].ID == "forged" {
		t.Error("unknown ids must not be adopted")
	}
}
