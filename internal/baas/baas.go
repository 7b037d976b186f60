// Package baas defines the authentication and document-store boundary the
// application consumes. Providers live in the services and repository
// packages; nothing here knows how they are implemented.
package baas

import (
	"context"
	"errors"
	"strings"
	"time"
)

// UsersCollection is the collection holding profile documents
const UsersCollection = "users"

// CodeUnavailable is the error code providers use for offline failures
const CodeUnavailable = "unavailable"

// Error is a provider failure carrying a machine-readable code
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	// ErrUnavailable signals the backend could not be reached
	ErrUnavailable = &Error{Code: CodeUnavailable, Message: "client is offline"}

	// ErrRevisionConflict is returned by SetDocument when ExpectedRevision
	// does not match the stored revision
	ErrRevisionConflict = errors.New("document revision conflict")
)

// Unavailable wraps err as an offline failure
func Unavailable(err error) error {
	return &Error{Code: CodeUnavailable, Message: "backend unavailable", Err: err}
}

// IsUnavailable reports whether err is an offline failure, either by code or
// because its message mentions being offline
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var be *Error
	if errors.As(err, &be) && be.Code == CodeUnavailable {
		return true
	}
	return strings.Contains(err.Error(), "offline")
}

// Session is an authenticated identity as seen by the application
type Session struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
}

// SessionChange is delivered to observers whenever a session token signs in,
// is resumed, or signs out. Session is nil on sign-out.
type SessionChange struct {
	Token   string
	Session *Session
}

// SessionObserver receives session changes
type SessionObserver func(SessionChange)

// AuthProvider is the external authentication capability
type AuthProvider interface {
	ObserveSession(fn SessionObserver) (unsubscribe func())
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	CreateAccount(ctx context.Context, email, password string) (*Session, error)
	SetDisplayName(ctx context.Context, session *Session, name string) error
	SignOut(ctx context.Context, session *Session) error
}

// Document is a schemaless stored object
type Document map[string]any

// SetOptions controls SetDocument. With Merge, top-level fields of the write
// replace stored fields and the rest are kept; without it the document is
// replaced. ExpectedRevision, when set, makes the write conditional.
type SetOptions struct {
	Merge            bool
	ExpectedRevision *int64
}

// DocumentStore is the external document capability. GetDocument reports
// found=false for an absent document.
type DocumentStore interface {
	GetDocument(ctx context.Context, collection, id string) (doc Document, found bool, err error)
	SetDocument(ctx context.Context, collection, id string, data Document, opts SetOptions) error
}

// NetworkToggler switches the store's network layer on and off
type NetworkToggler interface {
	EnableNetwork(ctx context.Context) error
	DisableNetwork(ctx context.Context) error
}

// RevisionField is the document field stores maintain when writes are
// revision-checked
const RevisionField = "revision"
