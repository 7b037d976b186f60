package services

import "errors"

var (
	// ErrInvalidCredentials is returned when email or password do not match
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailInUse is returned when registering an email that already exists
	ErrEmailInUse = errors.New("email already in use")

	// ErrWeakPassword is returned for passwords shorter than minPasswordLength
	ErrWeakPassword = errors.New("password should be at least 6 characters")

	// ErrInvalidToken is returned for malformed, expired or revoked session tokens
	ErrInvalidToken = errors.New("invalid session token")

	// ErrNoSession is returned when an operation needs a loaded profile
	ErrNoSession = errors.New("no active session")

	// ErrDestinationNotFound is returned for ids missing from the catalog
	ErrDestinationNotFound = errors.New("destination not found")

	// ErrItineraryItemNotFound is returned when no itinerary item has the id
	ErrItineraryItemNotFound = errors.New("itinerary item not found")

	// ErrInvalidDate is returned for dates not in YYYY-MM-DD form
	ErrInvalidDate = errors.New("dates must be formatted as YYYY-MM-DD")
)

// ConnectivityError is a user-facing failure caused by the backend being
// unreachable. Err is the provider error it replaces.
type ConnectivityError struct {
	Message string
	Err     error
}

func (e *ConnectivityError) Error() string { return e.Message }

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConnectivity reports whether err is a *ConnectivityError
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
