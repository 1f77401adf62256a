package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/askwhyharsh/arlocations/internal/place"
	"github.com/askwhyharsh/arlocations/internal/ratelimit"
	"github.com/askwhyharsh/arlocations/internal/render"
	"github.com/askwhyharsh/arlocations/internal/report"
	"github.com/askwhyharsh/arlocations/internal/scene"
	"github.com/askwhyharsh/arlocations/internal/session"
	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
	"github.com/askwhyharsh/arlocations/pkg/logger"
	"github.com/askwhyharsh/arlocations/pkg/validator"
)

type SessionManager interface {
	Create() (*session.Session, error)
	Get(sessionID string) (*session.Session, error)
	Remove(sessionID string) error
	Count() int
}

type ReportGetter interface {
	Get(ctx context.Context, sessionID string) (*report.DistanceReport, error)
	Channel(sessionID string) string
}

type Handler struct {
	sessions    SessionManager
	catalog     *place.Catalog
	reports     ReportGetter
	labels      scene.LabelRenderer
	rateLimiter ratelimit.RateLimiter
	validator   validator.Validator
	logger      logger.Logger
}

type SessionResponse struct {
	SessionID     string        `json:"session_id"`
	CreatedAt     string        `json:"created_at"`
	ReportChannel string        `json:"report_channel"`
	Places        []place.Place `json:"places"`
}

func NewHandler(sessions SessionManager, catalog *place.Catalog, reports ReportGetter, labels scene.LabelRenderer, rateLimiter ratelimit.RateLimiter, v validator.Validator, log logger.Logger) *Handler {
	return &Handler{
		sessions:    sessions,
		catalog:     catalog,
		reports:     reports,
		labels:      labels,
		rateLimiter: rateLimiter,
		validator:   v,
		logger:      log,
	}
}

// POST /api/session/create
func (h *Handler) CreateSession(c *gin.Context) {
	ip := c.ClientIP()

	allowed, err := h.rateLimiter.AllowSessionCreation(c.Request.Context(), ip)
	if err != nil {
		h.logger.Error("Failed to check session rate limit", "ip", ip, "error", err)
	} else if !allowed {
		c.JSON(http.StatusTooManyRequests, ErrorResponse("Rate limit exceeded", "RATE_LIMIT"))
		return
	}

	sess, err := h.sessions.Create()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse("Failed to create session", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse(SessionResponse{
		SessionID:     sess.ID,
		CreatedAt:     sess.CreatedAt.Format(time.RFC3339),
		ReportChannel: h.reports.Channel(sess.ID),
		Places:        h.catalog.Places(),
	}))
}

// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.lookupSession(c, c.Param("id"))
	if !ok {
		return
	}

	snap, err := sess.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGone, ErrorResponse(err.Error(), "SESSION_CLOSED"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(snap))
}

// POST /api/sessions/:id/authorization
func (h *Handler) UpdateAuthorization(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("Invalid request", "INVALID_REQUEST"))
		return
	}

	status, err := session.ParseAuthorization(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse(err.Error(), "INVALID_AUTHORIZATION"))
		return
	}

	sess, ok := h.lookupSession(c, c.Param("id"))
	if !ok {
		return
	}

	if err := sess.Authorize(c.Request.Context(), status); err != nil {
		c.JSON(http.StatusGone, ErrorResponse(err.Error(), "SESSION_CLOSED"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(gin.H{
		"status":     status,
		"authorized": status.Authorized(),
	}))
}

// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse(err.Error(), "SESSION_NOT_FOUND"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(gin.H{
		"message": "Session closed",
	}))
}

// GET /api/places
func (h *Handler) ListPlaces(c *gin.Context) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		places := h.catalog.Places()
		c.JSON(http.StatusOK, SuccessResponse(gin.H{
			"count":  len(places),
			"places": places,
		}))
		return
	}

	lat, errLat := strconv.ParseFloat(latStr, 64)
	lon, errLon := strconv.ParseFloat(lonStr, 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("lat and lon must both be numbers", "INVALID_COORDINATES"))
		return
	}
	if err := h.validator.ValidateCoordinates(lat, lon); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse(err.Error(), "INVALID_COORDINATES"))
		return
	}

	places := h.catalog.Near(lat, lon)
	c.JSON(http.StatusOK, SuccessResponse(gin.H{
		"count":  len(places),
		"places": places,
	}))
}

// POST /api/location/update
func (h *Handler) UpdateLocation(c *gin.Context) {
	var req struct {
		SessionID string   `json:"session_id" binding:"required"`
		Latitude  *float64 `json:"latitude" binding:"required"`
		Longitude *float64 `json:"longitude" binding:"required"`
		Heading   *float64 `json:"heading"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("Invalid request", "INVALID_REQUEST"))
		return
	}

	if err := h.validator.ValidateCoordinates(*req.Latitude, *req.Longitude); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse(err.Error(), "INVALID_COORDINATES"))
		return
	}

	pose := place.UserPose{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if req.Heading != nil {
		if err := h.validator.ValidateHeading(*req.Heading); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse(err.Error(), "INVALID_HEADING"))
			return
		}
		pose.Heading, pose.HasHeading = *req.Heading, true
	}

	sess, ok := h.lookupSession(c, req.SessionID)
	if !ok {
		return
	}

	allowed, err := h.rateLimiter.AllowLocationUpdate(c.Request.Context(), req.SessionID)
	if err != nil {
		h.logger.Error("Failed to check location rate limit", "session_id", req.SessionID, "error", err)
	} else if !allowed {
		c.JSON(http.StatusTooManyRequests, ErrorResponse("Location update rate limit exceeded", "RATE_LIMIT"))
		return
	}

	err = sess.UpdateLocation(c.Request.Context(), pose)
	switch {
	case errors.Is(err, apperrors.ErrLocationNotAuthorized):
		c.JSON(http.StatusForbidden, ErrorResponse(err.Error(), "LOCATION_NOT_AUTHORIZED"))
		return
	case errors.Is(err, apperrors.ErrSessionClosed):
		c.JSON(http.StatusGone, ErrorResponse(err.Error(), "SESSION_CLOSED"))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, ErrorResponse("Failed to update location", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(gin.H{
		"message": "Location updated successfully",
	}))
}

// GET /api/sessions/:id/distances
func (h *Handler) GetDistances(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.validator.ValidateSessionID(sessionID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse(err.Error(), "INVALID_SESSION"))
		return
	}

	r, err := h.reports.Get(c.Request.Context(), sessionID)
	if errors.Is(err, apperrors.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse(err.Error(), "REPORT_NOT_FOUND"))
		return
	}
	if err != nil {
		h.logger.Error("Failed to get distance report", "session_id", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse("Failed to get distances", "INTERNAL_ERROR"))
		return
	}

	c.JSON(http.StatusOK, SuccessResponse(r))
}

// GET /api/labels/:id
func (h *Handler) GetLabel(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse("Invalid place id", "INVALID_REQUEST"))
		return
	}

	p, ok := h.catalog.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse(apperrors.ErrPlaceNotFound.Error(), "PLACE_NOT_FOUND"))
		return
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, h.labels.Render(p.Name)); err != nil {
		h.logger.Error("Failed to encode label", "place_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse("Failed to render label", "INTERNAL_ERROR"))
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.sessions.Count(),
		"places":   h.catalog.Len(),
		"time":     c.GetTime("request_time"),
	})
}

func (h *Handler) lookupSession(c *gin.Context, sessionID string) (*session.Session, bool) {
	if err := h.validator.ValidateSessionID(sessionID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse(err.Error(), "INVALID_SESSION"))
		return nil, false
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse(err.Error(), "SESSION_NOT_FOUND"))
		return nil, false
	}
	return sess, true
}
