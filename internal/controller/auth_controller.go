package controller

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/telecasthq/telecast-backend/internal/auth"
	"github.com/telecasthq/telecast-backend/internal/google"
	"github.com/telecasthq/telecast-backend/internal/model"
	"github.com/telecasthq/telecast-backend/internal/repository"
	"go.uber.org/zap"
)

const stateCookieName = "oauth_state"

type AuthController struct {
	OAuth     *google.OAuthClient
	UserRepo  repository.UserRepositoryInterface
	JWTSecret string
	Logger    *zap.Logger
}

// Login redirects to Google's consent screen. A random state value is set
// as a short-lived cookie and checked on callback.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if !c.OAuth.Configured() {
		writeError(w, http.StatusInternalServerError, "Google OAuth is not configured")
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, c.OAuth.AuthURL(c.redirectURI(r), state), http.StatusFound)
}

// Callback exchanges the authorization code, upserts the user, and sets
// the session cookie before bouncing back to the app.
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		writeError(w, http.StatusBadRequest, "Google sign-in was cancelled or failed")
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		writeError(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	token, err := c.OAuth.ExchangeCode(r.Context(), code, c.redirectURI(r))
	if err != nil {
		c.Logger.Error("oauth code exchange failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to complete Google sign-in")
		return
	}

	info, err := c.OAuth.FetchUserInfo(r.Context(), token.AccessToken)
	if err != nil {
		c.Logger.Error("failed to fetch google user info", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to complete Google sign-in")
		return
	}

	user := &model.User{
		GoogleID:           info.ID,
		Email:              info.Email,
		Name:               info.Name,
		GoogleRefreshToken: token.RefreshToken,
	}
	if err := c.UserRepo.Upsert(user); err != nil {
		c.Logger.Error("failed to upsert user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save user")
		return
	}

	session, err := auth.IssueSessionToken(c.JWTSecret, info.ID, info.Email)
	if err != nil {
		c.Logger.Error("failed to issue session token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    session,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout clears the session cookie.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Status reports whether the request carries a valid session.
func (c *AuthController) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	claims, err := auth.VerifySessionToken(c.JWTSecret, cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	user, err := c.UserRepo.GetByGoogleID(claims.Subject)
	if err != nil || user == nil {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
	})
}

func (c *AuthController) redirectURI(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}
	return scheme + "://" + r.Host + "/auth/google/callback"
}
