package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/gspot/database/dbhelper"
	"github.com/ray-remotestate/gspot/middlewares"
	"github.com/ray-remotestate/gspot/models"
	"github.com/ray-remotestate/gspot/utils"
)

const refreshCookie = "refresh_token"

func setRefreshCookie(w http.ResponseWriter, token string, expires time.Time, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondError(w, http.StatusBadRequest, "email and password required")
		return
	}

	user, err := h.Users.GetUserByPassword(r.Context(), req.Email, req.Password)
	if errors.Is(err, dbhelper.ErrInvalidCredentials) {
		utils.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to look up user")
		utils.RespondError(w, http.StatusInternalServerError, "server error")
		return
	}

	roles, err := h.Users.GetUserRoles(r.Context(), user.ID)
	if err != nil {
		logrus.WithError(err).Error("failed to fetch roles")
		utils.RespondError(w, http.StatusInternalServerError, "could not fetch roles")
		return
	}
	if len(roles) == 0 {
		utils.RespondError(w, http.StatusForbidden, "no roles assigned")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(user.ID, roles)
	if err != nil {
		logrus.WithError(err).Error("failed to generate tokens")
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}
	setRefreshCookie(w, refreshToken, time.Now().Add(utils.RefreshTokenTTL), 0)

	logrus.WithField("user_id", user.ID).Info("admin logged in")
	for _, role := range roles {
		user.Roles = append(user.Roles, models.Role(role))
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"user":         user,
		"access_token": accessToken,
		"message":      "Successfully logged in",
	})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "refresh token missing")
		return
	}

	claims, err := middlewares.ParseToken(cookie.Value, middlewares.TokenRefresh)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	roles, err := h.Users.GetUserRoles(r.Context(), claims.UserID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", claims.UserID).Error("failed to reload roles")
		utils.RespondError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}
	if len(roles) == 0 {
		setRefreshCookie(w, "", time.Unix(0, 0), -1)
		utils.RespondError(w, http.StatusForbidden, "no roles assigned")
		return
	}

	accessToken, refreshToken, err := utils.GenerateTokens(claims.UserID, roles)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	setRefreshCookie(w, refreshToken, time.Now().Add(utils.RefreshTokenTTL), 0)

	utils.RespondJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	setRefreshCookie(w, "", time.Unix(0, 0), -1)
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}
