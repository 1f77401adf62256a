package session

import (
	apperrors "github.com/askwhyharsh/arlocations/pkg/errors"
)

// AuthorizationStatus mirrors the device's location permission.
type AuthorizationStatus string

const (
	StatusNotDetermined       AuthorizationStatus = "not_determined"
	StatusRestricted          AuthorizationStatus = "restricted"
	StatusDenied              AuthorizationStatus = "denied"
	StatusAuthorizedWhenInUse AuthorizationStatus = "authorized_when_in_use"
	StatusAuthorizedAlways    AuthorizationStatus = "authorized_always"
)

func ParseAuthorization(s string) (AuthorizationStatus, error) {
	switch st := AuthorizationStatus(s); st {
	case StatusNotDetermined, StatusRestricted, StatusDenied,
		StatusAuthorizedWhenInUse, StatusAuthorizedAlways:
		return st, nil
	}
	return "", apperrors.ErrInvalidAuthorization
}

// Authorized reports whether location fixes may be applied.
func (a AuthorizationStatus) Authorized() bool {
	return a == StatusAuthorizedWhenInUse || a == StatusAuthorizedAlways
}
