package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/config"
	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
)

// --- Error Definitions ---
var (
	ErrStravaExchangeFailed = errors.New("failed to exchange authorization code with Strava")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrUserNotFound         = errors.New("user not found")
)

// stravaEndpoint is Strava's OAuth2 authorization endpoint.
var stravaEndpoint = oauth2.Endpoint{
	AuthURL:  "https://www.strava.com/oauth/authorize",
	TokenURL: "https://www.strava.com/oauth/token",
}

// --- Service Interface ---
type AuthService interface {
	// AuthCodeURL returns the Strava authorization page URL for the given
	// anti-CSRF state value.
	AuthCodeURL(state string) string
	// HandleStravaCallback exchanges the authorization code, upserts the user
	// record keyed by Strava athlete ID, and returns a signed session token.
	HandleStravaCallback(ctx context.Context, code string) (token string, user *domain.User, err error)
	GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	TokenLifetime() time.Duration
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	oauthConfig   *oauth2.Config
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, stravaCfg config.StravaConfig, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 24 * 7 // Default to 1 week if not set properly
	}
	oauthConfig := &oauth2.Config{
		ClientID:     stravaCfg.ClientID,
		ClientSecret: stravaCfg.ClientSecret,
		RedirectURL:  stravaCfg.RedirectURL,
		Endpoint:     stravaEndpoint,
		// Strava expects a single comma-separated scope value.
		Scopes: []string{"read,activity:read_all,profile:read_all"},
	}
	return &authService{
		userRepo:      userRepo,
		oauthConfig:   oauthConfig,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// AuthCodeURL builds the Strava authorization redirect URL.
func (s *authService) AuthCodeURL(state string) string {
	return s.oauthConfig.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
}

// HandleStravaCallback completes the authorization-code flow.
func (s *authService) HandleStravaCallback(ctx context.Context, code string) (string, *domain.User, error) {
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrStravaExchangeFailed, err)
	}

	// Strava returns the athlete summary alongside the token.
	athlete, ok := token.Extra("athlete").(map[string]interface{})
	if !ok {
		return "", nil, fmt.Errorf("%w: token response missing athlete", ErrStravaExchangeFailed)
	}
	athleteID, ok := athlete["id"].(float64)
	if !ok || athleteID == 0 {
		return "", nil, fmt.Errorf("%w: token response missing athlete id", ErrStravaExchangeFailed)
	}

	name := strings.TrimSpace(fmt.Sprintf("%s %s", stringField(athlete, "firstname"), stringField(athlete, "lastname")))
	picture := stringField(athlete, "profile")

	user, err := s.upsertStravaUser(ctx, int64(athleteID), name, picture, token)
	if err != nil {
		return "", nil, err
	}

	jwtToken, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	return jwtToken, user, nil
}

// upsertStravaUser creates the user on first login, or refreshes the stored
// tokens and profile fields on subsequent logins.
func (s *authService) upsertStravaUser(ctx context.Context, stravaID int64, name, picture string, token *oauth2.Token) (*domain.User, error) {
	user, err := s.userRepo.GetByStravaID(ctx, stravaID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		user = &domain.User{
			StravaID:           stravaID,
			Name:               name,
			ProfilePicture:     picture,
			StravaAccessToken:  token.AccessToken,
			StravaRefreshToken: token.RefreshToken,
			StravaTokenExpiry:  token.Expiry.Unix(),
		}
		userID, err := s.userRepo.Create(ctx, user)
		if err != nil {
			return nil, err
		}
		user.ID = userID
		return user, nil
	}

	user.Name = name
	user.ProfilePicture = picture
	user.StravaAccessToken = token.AccessToken
	user.StravaRefreshToken = token.RefreshToken
	user.StravaTokenExpiry = token.Expiry.Unix()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser fetches a user by ID.
func (s *authService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// TokenLifetime returns the configured session token lifetime.
func (s *authService) TokenLifetime() time.Duration {
	return s.jwtExpiration
}

// stringField reads an optional string out of a decoded JSON object.
func stringField(m map[string]interface{}, key string) string {
	v, _ := m[key].(string)
	return v
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "marathon-trainer",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}
