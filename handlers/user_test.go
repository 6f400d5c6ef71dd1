package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/ray-remotestate/gspot/config"
	"github.com/ray-remotestate/gspot/database/dbhelper"
	"github.com/ray-remotestate/gspot/middlewares"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/utils"
)

type fakeUsers struct {
	user  models.User
	roles []string
}

func (f *fakeUsers) GetUserByPassword(_ context.Context, email, password string) (*models.User, error) {
	if email != f.user.Email || password != f.user.Password {
		return nil, dbhelper.ErrInvalidCredentials
	}
	u := f.user
	return &u, nil
}

func (f *fakeUsers) GetUserRoles(context.Context, uuid.UUID) ([]string, error) {
	return f.roles, nil
}

func TestLogin(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	users := &fakeUsers{
		user:  models.User{ID: uuid.New(), Name: "Owner", Email: "owner@gspot.ph", Password: "hunter22"},
		roles: []string{"admin"},
	}
	h := &Handler{Users: users}

	login := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.Login(rec, httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(body)))
		return rec
	}

	if rec := login(`{"email":"owner@gspot.ph","password":"nope"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password = %d", rec.Code)
	}
	if rec := login(`{"email":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields = %d", rec.Code)
	}

	rec := login(`{"email":"owner@gspot.ph","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		AccessToken string         `json:"access_token"`
		User        map[string]any `json:"user"`
	}
	decodeBody(t, rec, &body)
	if _, leaked := body.User["password"]; leaked {
		t.Error("password hash must not be serialized")
	}
	claims, err := middlewares.ParseToken(body.AccessToken, middlewares.TokenAccess)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != users.user.ID || !claims.HasRole(models.RoleAdmin) {
		t.Errorf("unexpected claims: %+v", claims)
	}

	users.roles = nil
	if rec := login(`{"email":"owner@gspot.ph","password":"hunter22"}`); rec.Code != http.StatusForbidden {
		t.Errorf("no roles = %d", rec.Code)
	}
}

func TestRefreshTokenReloadsRoles(t *testing.T) {
	config.SecretKey = []byte("test-secret")
	users := &fakeUsers{
		user:  models.User{ID: uuid.New(), Email: "owner@gspot.ph", Password: "hunter22"},
		roles: []string{"staff"},
	}
	h := &Handler{Users: users}

	access, refresh, err := utils.GenerateTokens(users.user.ID, []string{"admin"})
	if err != nil {
		t.Fatal(err)
	}
	refreshWith := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshCookie, Value: token})
		rec := httptest.NewRecorder()
		h.RefreshToken(rec, req)
		return rec
	}

	if rec := refreshWith(access); rec.Code != http.StatusUnauthorized {
		t.Errorf("access token as refresh = %d", rec.Code)
	}

	rec := refreshWith(refresh)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh = %d: %s", rec.Code, rec.Body)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, rec, &body)
	claims, err := middlewares.ParseToken(body.AccessToken, middlewares.TokenAccess)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.HasRole(models.RoleAdmin) || !claims.HasRole(models.RoleStaff) {
		t.Errorf("roles not reloaded: %v", claims.Roles)
	}

	users.roles = nil
	if rec := refreshWith(refresh); rec.Code != http.StatusForbidden {
		t.Errorf("revoked user refresh = %d", rec.Code)
	}
}
