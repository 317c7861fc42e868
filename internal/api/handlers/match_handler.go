package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/services"
)

type MatchHandler struct {
	svc services.MatchService
}

func NewMatchHandler(svc services.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// FindInterviewers serves GET /match/interviewers?subject=&lat=&lng=&radius=
// where radius is in kilometres.
func (h *MatchHandler) FindInterviewers(c *gin.Context) {
	const op = "MatchHandler.FindInterviewers"

	if _, ok := requireActor(c); !ok {
		return
	}

	q := services.MatchQuery{Subject: c.Query("subject")}

	lat, err := optionalFloat(c, "lat")
	if err != nil {
		badRequest(c, op, "lat must be a number", err)
		return
	}
	lng, err := optionalFloat(c, "lng")
	if err != nil {
		badRequest(c, op, "lng must be a number", err)
		return
	}
	radius, err := optionalFloat(c, "radius")
	if err != nil {
		badRequest(c, op, "radius must be a number", err)
		return
	}
	q.Lat, q.Lng = lat, lng
	if radius != nil {
		if *radius == 0 {
			badRequest(c, op, "radius must be positive", nil)
			return
		}
		q.RadiusKm = *radius
	}

	matches, err := h.svc.FindInterviewers(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
