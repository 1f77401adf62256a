package websocket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/askwhyharsh/arlocations/internal/api"
	"github.com/askwhyharsh/arlocations/internal/place"
	"github.com/askwhyharsh/arlocations/internal/scene"
	"github.com/askwhyharsh/arlocations/internal/session"
	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
	"github.com/askwhyharsh/arlocations/pkg/logger"
	"github.com/askwhyharsh/arlocations/pkg/validator"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // native clients send no Origin
	},
}

type SessionGetter interface {
	Get(sessionID string) (*session.Session, error)
}

type RateLimiter interface {
	AllowLocationUpdate(ctx context.Context, sessionID string) (bool, error)
}

type Handler struct {
	hub         *Hub
	sessions    SessionGetter
	rateLimiter RateLimiter
	validator   validator.Validator
	projection  scene.Camera
	logger      logger.Logger
}

// NewHandler builds the device channel handler. Frames that omit projection
// parameters inherit them from projection.
func NewHandler(hub *Hub, sessions SessionGetter, rateLimiter RateLimiter, v validator.Validator, projection scene.Camera, log logger.Logger) *Handler {
	return &Handler{
		hub:         hub,
		sessions:    sessions,
		rateLimiter: rateLimiter,
		validator:   v,
		projection:  projection,
		logger:      log,
	}
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	sessionID := c.GetString("session_id")
	if sessionID == "" {
		sessionID = c.Query("session_id")
	}
	if err := h.validator.ValidateSessionID(sessionID); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse("session_id required", "INVALID_SESSION"))
		return
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse(err.Error(), "SESSION_NOT_FOUND"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "session_id", sessionID, "error", err)
		return
	}

	client := NewClient(h.hub, conn, sess, h, h.logger)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}
	sess.Attach(client)

	go client.WritePump()
	client.ReadPump()
}

func (h *Handler) handleMessage(client *Client, msg *IncomingMessage) {
	var err error

	switch msg.Type {
	case MessageTypeAuthorization:
		err = h.handleAuthorization(client, msg)
	case MessageTypeLocation:
		err = h.handleLocation(client, msg)
	case MessageTypeFrame:
		err = h.handleFrame(client, msg)
	case MessageTypePause:
		err = client.session.Pause(client.ctx)
	case MessageTypeResume:
		err = client.session.Resume(client.ctx)
	case MessageTypePing:
		client.trySend(&Message{
			Type:      MessageTypePong,
			Timestamp: time.Now().Unix(),
		})
	default:
		err = apperrors.ErrInvalidMessageType
	}

	if err != nil {
		client.SendError(err.Error(), errorCode(err))
	}
}

func (h *Handler) handleAuthorization(client *Client, msg *IncomingMessage) error {
	status, err := session.ParseAuthorization(msg.Status)
	if err != nil {
		return err
	}
	return client.session.Authorize(client.ctx, status)
}

func (h *Handler) handleLocation(client *Client, msg *IncomingMessage) error {
	if msg.Lat == nil || msg.Lon == nil {
		return apperrors.ErrInvalidCoordinates
	}
	if err := h.validator.ValidateCoordinates(*msg.Lat, *msg.Lon); err != nil {
		return err
	}

	pose := place.UserPose{Latitude: *msg.Lat, Longitude: *msg.Lon}
	if msg.Heading != nil {
		if err := h.validator.ValidateHeading(*msg.Heading); err != nil {
			return err
		}
		pose.Heading, pose.HasHeading = *msg.Heading, true
	}

	if h.rateLimiter != nil {
		allowed, err := h.rateLimiter.AllowLocationUpdate(client.ctx, client.sessionID)
		if err != nil {
			h.logger.Error("Failed to check location rate limit", "session_id", client.sessionID, "error", err)
		} else if !allowed {
			return apperrors.ErrRateLimitExceeded
		}
	}

	return client.session.UpdateLocation(client.ctx, pose)
}

func (h *Handler) handleFrame(client *Client, msg *IncomingMessage) error {
	if msg.Camera == nil {
		return apperrors.ErrInvalidCamera
	}

	cam := *msg.Camera
	if cam.FieldOfView == 0 {
		cam.FieldOfView = h.projection.FieldOfView
	}
	if cam.Aspect == 0 {
		cam.Aspect = h.projection.Aspect
	}
	if cam.Near == 0 {
		cam.Near = h.projection.Near
	}
	if cam.Far == 0 {
		cam.Far = h.projection.Far
	}
	if err := h.validator.ValidateProjection(cam.FieldOfView, cam.Aspect, cam.Near, cam.Far); err != nil {
		return err
	}
	if !cam.Transform.IsFinite() {
		return apperrors.ErrInvalidCamera
	}

	return client.session.Frame(client.ctx, cam)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrLocationNotAuthorized):
		return "LOCATION_NOT_AUTHORIZED"
	case errors.Is(err, apperrors.ErrRateLimitExceeded):
		return "RATE_LIMIT"
	case errors.Is(err, apperrors.ErrInvalidMessageType):
		return "INVALID_TYPE"
	case errors.Is(err, apperrors.ErrSessionClosed):
		return "SESSION_CLOSED"
	case errors.Is(err, apperrors.ErrInvalidAuthorization),
		errors.Is(err, apperrors.ErrInvalidCoordinates),
		errors.Is(err, apperrors.ErrInvalidLatitude),
		errors.Is(err, apperrors.ErrInvalidLongitude),
		errors.Is(err, apperrors.ErrInvalidHeading),
		errors.Is(err, apperrors.ErrInvalidCamera):
		return "INVALID_INPUT"
	default:
		return "INTERNAL_ERROR"
	}
}
