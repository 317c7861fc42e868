package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/services"
)

type ProfileHandler struct {
	svc services.DirectoryService
}

func NewProfileHandler(svc services.DirectoryService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// RegisterProfileRequest carries fields for both roles; the token's role
// decides which ones are read.
type RegisterProfileRequest struct {
	FullName string           `json:"full_name" binding:"required"`
	Email    string           `json:"email"`
	Location *services.LatLng `json:"location"`

	YearsOfExperience    int      `json:"years_of_experience"`
	Domains              []string `json:"domains"`
	AvailabilityRadiusKm float64  `json:"availability_radius_km"`

	CurrentStatus models.CurrentStatus `json:"current_status"`
	YearOfStudy   int                  `json:"year_of_study"`
	Domain        string               `json:"domain"`
}

func (h *ProfileHandler) Register(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req RegisterProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ProfileHandler.Register", "invalid request body", err)
		return
	}

	u, err := h.svc.Register(c.Request.Context(), actor, services.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Location: req.Location,
		Interviewer: models.InterviewerProfile{
			YearsOfExperience:    req.YearsOfExperience,
			Domains:              req.Domains,
			AvailabilityRadiusKm: req.AvailabilityRadiusKm,
		},
		Interviewee: models.IntervieweeProfile{
			CurrentStatus: req.CurrentStatus,
			YearOfStudy:   req.YearOfStudy,
			Domain:        req.Domain,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *ProfileHandler) Me(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	u, err := h.svc.Get(c.Request.Context(), actor.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type UpdateProfileRequest struct {
	FullName *string          `json:"full_name,omitempty"`
	Location *services.LatLng `json:"location,omitempty"`

	YearsOfExperience    *int      `json:"years_of_experience,omitempty"`
	Domains              *[]string `json:"domains,omitempty"`
	AvailabilityRadiusKm *float64  `json:"availability_radius_km,omitempty"`

	CurrentStatus *models.CurrentStatus `json:"current_status,omitempty"`
	YearOfStudy   *int                  `json:"year_of_study,omitempty"`
	Domain        *string               `json:"domain,omitempty"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ProfileHandler.Update", "invalid request body", err)
		return
	}

	u, err := h.svc.Update(c.Request.Context(), actor, services.ProfilePatch{
		FullName:             req.FullName,
		Location:             req.Location,
		YearsOfExperience:    req.YearsOfExperience,
		Domains:              req.Domains,
		AvailabilityRadiusKm: req.AvailabilityRadiusKm,
		CurrentStatus:        req.CurrentStatus,
		YearOfStudy:          req.YearOfStudy,
		Domain:               req.Domain,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
