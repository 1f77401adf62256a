package errors

import "errors"

var (
	// Session errors
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionClosed         = errors.New("session closed")
	ErrInvalidSessionID      = errors.New("invalid session ID")
	ErrLocationNotAuthorized = errors.New("location updates not authorized")
	ErrInvalidAuthorization  = errors.New("unknown authorization status")

	// Validation errors
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrInvalidLatitude    = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude   = errors.New("longitude must be between -180 and 180")
	ErrInvalidHeading     = errors.New("heading must be between 0 and 360")
	ErrEmptyPlaceName     = errors.New("place name cannot be empty")
	ErrInvalidCamera      = errors.New("invalid camera pose")

	// Place errors
	ErrDuplicatePlaceID = errors.New("duplicate place ID")
	ErrPlaceNotFound    = errors.New("place not found")

	// Rate limit errors
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// WebSocket errors
	ErrWebSocketClosed    = errors.New("websocket connection closed")
	ErrInvalidMessageType = errors.New("invalid message type")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrReportNotFound     = errors.New("distance report not found")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
	}
}
