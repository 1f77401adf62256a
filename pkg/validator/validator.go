package validator

import (
	"math"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
)

type Validator interface {
	ValidateCoordinates(lat, lon float64) error
	ValidateHeading(heading float64) error
	ValidatePlaceName(name string) error
	ValidateSessionID(sessionID string) error
	ValidateProjection(fovDegrees, aspect, near, far float64) error
}

type validator struct{}

func NewValidator() Validator {
	return &validator{}
}

func (v *validator) ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return apperrors.ErrInvalidLatitude
	}

	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return apperrors.ErrInvalidLongitude
	}

	return nil
}

func (v *validator) ValidateHeading(heading float64) error {
	if math.IsNaN(heading) || heading < 0 || heading > 360 {
		return apperrors.ErrInvalidHeading
	}

	return nil
}

func (v *validator) ValidatePlaceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.ErrEmptyPlaceName
	}

	return nil
}

func (v *validator) ValidateSessionID(sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return apperrors.ErrInvalidSessionID
	}

	return nil
}

// ValidateProjection checks the perspective parameters of a camera pose.
func (v *validator) ValidateProjection(fovDegrees, aspect, near, far float64) error {
	if !(fovDegrees > 0 && fovDegrees < 180) {
		return apperrors.ErrInvalidCamera
	}
	if !(aspect > 0) || math.IsInf(aspect, 0) {
		return apperrors.ErrInvalidCamera
	}
	if !(near > 0) || !(far > near) || math.IsInf(far, 0) {
		return apperrors.ErrInvalidCamera
	}

	return nil
}
