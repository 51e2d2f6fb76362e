package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- Request/Response Structs ---

type GeneratePlanRequest struct {
	Regenerate bool `json:"regenerate"`
}

// PlanVersionResponse carries one stored plan version with its body parsed
// back into JSON for the client.
type PlanVersionResponse struct {
	ID        string            `json:"id"`
	Plan      json.RawMessage   `json:"plan"`
	Source    domain.PlanSource `json:"source"`
	CreatedAt time.Time         `json:"createdAt"`
}

type ExportResponse struct {
	URL string `json:"url"`
}

// --- Handler Methods ---

// GetPlan returns the user's current (latest) training plan.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	version, err := h.planService.GetLatest(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "No training plan found. Generate one first.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load training plan")
		}
		return
	}

	c.JSON(http.StatusOK, mapPlanVersionToResponse(version))
}

// GeneratePlan generates a training plan for the user. The request body is
// optional; an absent body means regenerate=false.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	version, err := h.planService.GenerateOrReuse(c.Request.Context(), userID, req.Regenerate)
	if err != nil {
		if errors.Is(err, service.ErrProfileIncomplete) {
			abortWithError(c, http.StatusBadRequest, "Please complete your profile first")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate training plan")
		}
		return
	}

	c.JSON(http.StatusOK, mapPlanVersionToResponse(version))
}

// ExportPlan returns a presigned download URL for the latest plan snapshot.
func (h *PlanHandler) ExportPlan(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	url, err := h.planService.ExportURL(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, "No training plan found. Generate one first.")
		case errors.Is(err, service.ErrExportUnavailable):
			abortWithError(c, http.StatusServiceUnavailable, "Plan export is not configured")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to export training plan")
		}
		return
	}

	c.JSON(http.StatusOK, ExportResponse{URL: url})
}

func mapPlanVersionToResponse(version *domain.PlanVersion) PlanVersionResponse {
	return PlanVersionResponse{
		ID:        version.ID.Hex(),
		Plan:      json.RawMessage(version.PlanJSON),
		Source:    version.Source,
		CreatedAt: version.CreatedAt,
	}
}
