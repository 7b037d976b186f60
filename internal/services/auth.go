package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/models"
	"travel-discovery-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	bcryptCost        = 12
	defaultTokenTTL   = 30 * 24 * time.Hour
)

// IdentityStore persists auth identities
type IdentityStore interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, uid string) (*models.Identity, error)
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
}

// AuthService is the auth provider: password identities with JWT session
// tokens. Every sign-in, resume and sign-out is announced to observers.
type AuthService struct {
	identities IdentityStore
	jwtSecret  []byte
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time

	mu        sync.Mutex
	observers map[int]baas.SessionObserver
	nextObs   int
	revoked   map[string]time.Time
}

// NewAuthService creates a new auth service. A zero tokenTTL uses 30 days.
func NewAuthService(identities IdentityStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		identities: identities,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		now:        time.Now,
		observers:  make(map[int]baas.SessionObserver),
		revoked:    make(map[string]time.Time),
	}
}

// ObserveSession registers fn for session changes
func (s *AuthService) ObserveSession(fn baas.SessionObserver) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// SignInWithPassword verifies credentials and opens a new session
func (s *AuthService) SignInWithPassword(ctx context.Context, email, password string) (*baas.Session, error) {
	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.open(identity)
}

// CreateAccount creates an identity and opens a session for it
func (s *AuthService) CreateAccount(ctx context.Context, email, password string) (*baas.Session, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &models.Identity{
		UID:          uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return s.open(identity)
}

// SetDisplayName updates the display name on the identity and the session
func (s *AuthService) SetDisplayName(ctx context.Context, session *baas.Session, name string) error {
	if err := s.identities.UpdateDisplayName(ctx, session.UID, name); err != nil {
		return err
	}
	session.DisplayName = name
	return nil
}

// SignOut revokes the session token and announces the sign-out
func (s *AuthService) SignOut(_ context.Context, session *baas.Session) error {
	if session == nil {
		return ErrNoSession
	}
	claims, err := s.parse(session.Token)
	if err != nil {
		return err
	}
	s.revoke(claims.ID, claims.ExpiresAt.Time)
	s.notify(baas.SessionChange{Token: session.Token})
	return nil
}

// Resume re-announces a still-valid token, e.g. after a process restart
func (s *AuthService) Resume(ctx context.Context, token string) (*baas.Session, error) {
	session, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	s.notify(baas.SessionChange{Token: token, Session: session})
	return session, nil
}

// Validate checks the token and loads its identity without notifying
func (s *AuthService) Validate(ctx context.Context, token string) (*baas.Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	identity, err := s.identities.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &baas.Session{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Token:       token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) open(identity *models.Identity) (*baas.Session, error) {
	token, expiresAt, err := s.generateJWT(identity)
	if err != nil {
		return nil, err
	}
	session := &baas.Session{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Token:       token,
		ExpiresAt:   expiresAt,
	}
	s.notify(baas.SessionChange{Token: token, Session: session})
	return session, nil
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// generateJWT generates a session token for an identity
func (s *AuthService) generateJWT(identity *models.Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := sessionClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   identity.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

func (s *AuthService) parse(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) revoke(jti string, expiresAt time.Time) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[jti] = expiresAt
}

func (s *AuthService) notify(change baas.SessionChange) {
	s.mu.Lock()
	observers := make([]baas.SessionObserver, 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(change)
	}
}
