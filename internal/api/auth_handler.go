package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// oauthStateCookie holds the anti-CSRF nonce between the redirect to Strava
// and the callback.
const (
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 5 * time.Minute
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService    service.AuthService
	profileService service.ProfileService
	frontendURL    string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, profileService service.ProfileService, frontendURL string) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
		frontendURL:    frontendURL,
	}
}

// --- Response Structs ---

// MeResponse describes the authenticated user. HasProfile tells the frontend
// whether onboarding is complete.
type MeResponse struct {
	ID             string    `json:"id"`
	StravaID       int64     `json:"stravaId"`
	Name           string    `json:"name,omitempty"`
	Email          string    `json:"email,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	HasProfile     bool      `json:"hasProfile"`
}

// --- Handler Methods ---

// StravaLogin redirects to the Strava OAuth authorization page.
func (h *AuthHandler) StravaLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(oauthStateCookie, state, int(oauthStateMaxAge.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, h.authService.AuthCodeURL(state))
}

// StravaCallback handles the OAuth callback: verifies the state, exchanges the
// code, and delivers the session token in an HttpOnly cookie before sending
// the user back to the frontend.
func (h *AuthHandler) StravaCallback(c *gin.Context) {
	state := c.Query("state")
	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != expectedState {
		abortWithError(c, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		abortWithError(c, http.StatusBadRequest, "Authorization code is missing")
		return
	}

	token, _, err := h.authService.HandleStravaCallback(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrStravaExchangeFailed) {
			abortWithError(c, http.StatusBadRequest, "Failed to exchange code for token")
		} else {
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	maxAge := int(h.authService.TokenLifetime().Seconds())
	c.SetCookie(AccessTokenCookie, token, maxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback")
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusUnauthorized, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load user")
		}
		return
	}

	hasProfile := true
	if _, err := h.profileService.GetProfile(c.Request.Context(), userID); err != nil {
		if !errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
			return
		}
		hasProfile = false
	}

	c.JSON(http.StatusOK, mapUserToMeResponse(user, hasProfile))
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func mapUserToMeResponse(user *domain.User, hasProfile bool) MeResponse {
	return MeResponse{
		ID:             user.ID.Hex(),
		StravaID:       user.StravaID,
		Name:           user.Name,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
		HasProfile:     hasProfile,
	}
}
