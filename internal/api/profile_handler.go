package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler holds the profile service dependency.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// --- Request/Response Structs ---

type UpsertProfileRequest struct {
	RaceDate        time.Time           `json:"raceDate" binding:"required"`
	GoalTimeMinutes int                 `json:"goalTimeMinutes" binding:"required,gt=0"`
	FitnessLevel    domain.FitnessLevel `json:"fitnessLevel" binding:"required,oneof=beginner intermediate advanced"`
}

type ProfileResponse struct {
	ID              string              `json:"id"`
	RaceDate        time.Time           `json:"raceDate"`
	GoalTimeMinutes int                 `json:"goalTimeMinutes"`
	FitnessLevel    domain.FitnessLevel `json:"fitnessLevel"`
}

// --- Handler Methods ---

// UpsertProfile creates or updates the authenticated user's race goal.
func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile, err := h.profileService.UpsertProfile(c.Request.Context(), userID, req.RaceDate, req.GoalTimeMinutes, req.FitnessLevel)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProfile) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to save profile")
		}
		return
	}

	c.JSON(http.StatusOK, mapProfileToResponse(profile))
}

// GetProfile returns the authenticated user's profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusNotFound, "Profile not found. Please complete onboarding.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile")
		}
		return
	}

	c.JSON(http.StatusOK, mapProfileToResponse(profile))
}

func mapProfileToResponse(profile *domain.RunnerProfile) ProfileResponse {
	return ProfileResponse{
		ID:              profile.ID.Hex(),
		RaceDate:        profile.RaceDate,
		GoalTimeMinutes: profile.GoalTimeMinutes,
		FitnessLevel:    profile.FitnessLevel,
	}
}
