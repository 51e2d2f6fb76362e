package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a runner who signed in through Strava.
// There is no password credential: the Strava athlete ID is the identity.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StravaID       int64              `bson:"stravaId" json:"stravaId"` // Unique Strava athlete ID
	Name           string             `bson:"name,omitempty" json:"name,omitempty"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"` // Strava does not provide email in basic scope
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Strava OAuth tokens ---
	// Kept server-side so the Strava link can be refreshed later.
	// Never exposed via JSON.
	StravaAccessToken  string `bson:"stravaAccessToken,omitempty" json:"-"`
	StravaRefreshToken string `bson:"stravaRefreshToken,omitempty" json:"-"`
	StravaTokenExpiry  int64  `bson:"stravaTokenExpiry,omitempty" json:"-"` // Unix seconds
}
