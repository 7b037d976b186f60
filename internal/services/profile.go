package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/metrics"
	"travel-discovery-backend/internal/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	msgSignInOffline   = "Unable to sign in while offline. Please check your connection."
	msgRegisterOffline = "Unable to create account while offline. Please check your connection."
	msgLoadOffline     = "You appear to be offline. Some features may be limited."
	msgLoadFailed      = "Failed to load user profile. Please try again."
	msgSaveOffline     = "Unable to save changes while offline. Changes will be saved when connection is restored."
	msgSaveFailed      = "Failed to save profile changes. Please try again."
)

// SessionStatus is the lifecycle position of a session token
type SessionStatus string

const (
	StatusInitializing    SessionStatus = "initializing"
	StatusProfileLoaded   SessionStatus = "profile_loaded"
	StatusProfileMissing  SessionStatus = "profile_missing"
	StatusUnauthenticated SessionStatus = "unauthenticated"
)

// SessionState is a snapshot of what the adapter knows about a token
type SessionState struct {
	Status  SessionStatus       `json:"status"`
	Session *baas.Session       `json:"session,omitempty"`
	Profile *models.UserProfile `json:"profile,omitempty"`
	Loading bool                `json:"loading"`
}

// AdvisoryKind separates offline advisories from other failures
type AdvisoryKind string

const (
	AdvisoryOffline AdvisoryKind = "offline"
	AdvisoryFailure AdvisoryKind = "failure"
)

// Advisory is a dismissible, user-facing notice about a failed background
// operation
type Advisory struct {
	Kind    AdvisoryKind `json:"kind"`
	Message string       `json:"message"`
}

func advisoryFor(err error, offlineMsg, failedMsg string) *Advisory {
	if baas.IsUnavailable(err) {
		return &Advisory{Kind: AdvisoryOffline, Message: offlineMsg}
	}
	return &Advisory{Kind: AdvisoryFailure, Message: failedMsg}
}

// EventPublisher delivers events to a user's open connections
type EventPublisher interface {
	Publish(userID string, event Event)
}

// SessionResumer is implemented by auth providers that can re-announce an
// existing token
type SessionResumer interface {
	Resume(ctx context.Context, token string) (*baas.Session, error)
}

// ProfileUpdate lists the profile fields to overwrite. Nil fields are kept.
type ProfileUpdate struct {
	DisplayName         *string
	PhotoURL            *string
	Preferences         *models.UserPreferences
	TravelHistory       *[]models.ItineraryItem
	SavedDestinations   *[]string
	Bio                 *string
	FavoriteDestination *string
	TravelGoal          *string
}

func (u ProfileUpdate) apply(p models.UserProfile) models.UserProfile {
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.PhotoURL != nil {
		photo := *u.PhotoURL
		p.PhotoURL = &photo
	}
	if u.Preferences != nil {
		prefs := *u.Preferences
		p.Preferences = &prefs
	}
	if u.TravelHistory != nil {
		p.TravelHistory = slices.Clone(*u.TravelHistory)
	}
	if u.SavedDestinations != nil {
		p.SavedDestinations = slices.Clone(*u.SavedDestinations)
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.FavoriteDestination != nil {
		p.FavoriteDestination = *u.FavoriteDestination
	}
	if u.TravelGoal != nil {
		p.TravelGoal = *u.TravelGoal
	}
	return p
}

// ProfileAdapter bridges user actions to the auth provider and the document
// store. It tracks one SessionState per session token; state transitions are
// driven by the provider's session notifications.
type ProfileAdapter struct {
	auth          baas.AuthProvider
	docs          baas.DocumentStore
	events        EventPublisher
	revisionCheck bool
	now           func() time.Time

	mu          sync.RWMutex
	sessions    map[string]SessionState
	unsubscribe func()
	resumes     singleflight.Group
}

// NewProfileAdapter creates the adapter and subscribes it to auth
// notifications. With revisionCheck, profile writes are conditional on the
// revision last read; otherwise the last write wins.
func NewProfileAdapter(auth baas.AuthProvider, docs baas.DocumentStore, events EventPublisher, revisionCheck bool) *ProfileAdapter {
	a := &ProfileAdapter{
		auth:          auth,
		docs:          docs,
		events:        events,
		revisionCheck: revisionCheck,
		now:           time.Now,
		sessions:      make(map[string]SessionState),
	}
	a.unsubscribe = auth.ObserveSession(a.onSessionChange)
	return a
}

// Close stops observing auth notifications
func (a *ProfileAdapter) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// State returns the current state of token. Expired sessions read as
// unauthenticated.
func (a *ProfileAdapter) State(token string) SessionState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st, ok := a.sessions[token]
	if !ok || a.expired(st) {
		return SessionState{Status: StatusUnauthenticated}
	}
	return st
}

// Authenticate returns the state of token, resuming it through the auth
// provider when the adapter has not seen it yet. A cached session past its
// expiry is dropped and rejected. Concurrent resumes of one token share a
// single bootstrap, and callers that find it loading wait for it.
func (a *ProfileAdapter) Authenticate(ctx context.Context, token string) (SessionState, error) {
	a.mu.RLock()
	st, ok := a.sessions[token]
	a.mu.RUnlock()
	if ok {
		if a.expired(st) {
			a.onSessionChange(baas.SessionChange{Token: token})
			metrics.AuthOperations.WithLabelValues("expire", metrics.OutcomeSuccess).Inc()
			return SessionState{Status: StatusUnauthenticated}, ErrInvalidToken
		}
		if !st.Loading {
			return st, nil
		}
	}

	resumer, canResume := a.auth.(SessionResumer)
	if !canResume {
		if ok {
			return st, nil
		}
		return SessionState{Status: StatusUnauthenticated}, ErrInvalidToken
	}
	_, err, _ := a.resumes.Do(token, func() (any, error) {
		if st := a.State(token); st.Status != StatusUnauthenticated {
			return nil, nil
		}
		_, err := resumer.Resume(ctx, token)
		return nil, err
	})
	if err != nil {
		metrics.AuthOperations.WithLabelValues("resume", outcomeOf(err)).Inc()
		return SessionState{Status: StatusUnauthenticated}, err
	}
	metrics.AuthOperations.WithLabelValues("resume", metrics.OutcomeSuccess).Inc()
	return a.State(token), nil
}

func (a *ProfileAdapter) expired(st SessionState) bool {
	return st.Session != nil && !st.Session.ExpiresAt.IsZero() && !a.now().Before(st.Session.ExpiresAt)
}

// SignIn authenticates with email and password. Offline failures become a
// *ConnectivityError; anything else is returned unchanged.
func (a *ProfileAdapter) SignIn(ctx context.Context, email, password string) (*baas.Session, error) {
	session, err := a.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		metrics.AuthOperations.WithLabelValues("sign_in", outcomeOf(err)).Inc()
		if baas.IsUnavailable(err) {
			return nil, &ConnectivityError{Message: msgSignInOffline, Err: err}
		}
		return nil, err
	}
	metrics.AuthOperations.WithLabelValues("sign_in", metrics.OutcomeSuccess).Inc()
	return session, nil
}

// Register creates the identity, sets its display name and writes the
// initial profile document. A failed document write leaves the identity in
// place with no profile; nothing is rolled back.
func (a *ProfileAdapter) Register(ctx context.Context, email, password, displayName string) (*baas.Session, error) {
	session, err := a.register(ctx, email, password, displayName)
	if err != nil {
		metrics.AuthOperations.WithLabelValues("register", outcomeOf(err)).Inc()
		if baas.IsUnavailable(err) {
			return session, &ConnectivityError{Message: msgRegisterOffline, Err: err}
		}
		return session, err
	}
	metrics.AuthOperations.WithLabelValues("register", metrics.OutcomeSuccess).Inc()
	return session, nil
}

func (a *ProfileAdapter) register(ctx context.Context, email, password, displayName string) (*baas.Session, error) {
	session, err := a.auth.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.auth.SetDisplayName(ctx, session, displayName); err != nil {
		return session, err
	}

	profile := models.UserProfile{
		UID:               session.UID,
		Email:             session.Email,
		DisplayName:       displayName,
		SavedDestinations: []string{},
		TravelHistory:     []models.ItineraryItem{},
		CreatedAt:         a.now().UTC(),
	}
	doc, err := toDocument(profile)
	if err != nil {
		return session, err
	}
	if err := a.docs.SetDocument(ctx, baas.UsersCollection, session.UID, doc, baas.SetOptions{}); err != nil {
		log.Error().Err(err).Str("user_id", session.UID).Msg("Failed to write profile for new account")
		return session, err
	}
	profile.Revision = 1

	a.mu.Lock()
	st, ok := a.sessions[session.Token]
	if ok {
		st.Status = StatusProfileLoaded
		st.Session = session
		st.Profile = &profile
		st.Loading = false
		a.sessions[session.Token] = st
	}
	a.mu.Unlock()

	if ok {
		a.publishState(session.UID, st)
	}
	log.Info().Str("user_id", session.UID).Msg("Account registered")
	return session, nil
}

// SignOut ends the session. Local state for token is cleared even when the
// provider call fails; the failure is only logged.
func (a *ProfileAdapter) SignOut(ctx context.Context, token string) error {
	st := a.State(token)
	if st.Session != nil {
		if err := a.auth.SignOut(ctx, st.Session); err != nil {
			metrics.AuthOperations.WithLabelValues("sign_out", outcomeOf(err)).Inc()
			log.Warn().Err(err).Str("user_id", st.Session.UID).Msg("Sign-out failed, clearing local session anyway")
		} else {
			metrics.AuthOperations.WithLabelValues("sign_out", metrics.OutcomeSuccess).Inc()
		}
	}

	a.mu.Lock()
	_, stillThere := a.sessions[token]
	delete(a.sessions, token)
	a.mu.Unlock()

	if stillThere && st.Session != nil {
		a.publishState(st.Session.UID, SessionState{Status: StatusUnauthenticated})
	}
	return nil
}

// UpdateProfile merges update over the loaded profile and writes it. Without
// a loaded profile it does nothing and returns nils. On a failed write the
// in-memory profile is untouched, and the advisory is both returned and
// published alongside the original error.
func (a *ProfileAdapter) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*models.UserProfile, *Advisory, error) {
	st := a.State(token)
	if st.Session == nil || st.Profile == nil {
		metrics.ProfileWrites.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return nil, nil, nil
	}

	merged := update.apply(*st.Profile)
	doc, err := toDocument(merged)
	if err != nil {
		return nil, nil, err
	}

	opts := baas.SetOptions{Merge: true}
	if a.revisionCheck {
		rev := st.Profile.Revision
		opts.ExpectedRevision = &rev
	}

	if err := a.docs.SetDocument(ctx, baas.UsersCollection, st.Session.UID, doc, opts); err != nil {
		metrics.ProfileWrites.WithLabelValues(outcomeOf(err)).Inc()
		log.Warn().Err(err).Str("user_id", st.Session.UID).Msg("Failed to update user profile")
		advisory := advisoryFor(err, msgSaveOffline, msgSaveFailed)
		a.publishAdvisory(st.Session.UID, advisory)
		return nil, advisory, err
	}
	metrics.ProfileWrites.WithLabelValues(metrics.OutcomeSuccess).Inc()
	merged.Revision++

	a.mu.Lock()
	if cur, ok := a.sessions[token]; ok {
		cur.Profile = &merged
		a.sessions[token] = cur
	}
	a.mu.Unlock()

	return &merged, nil, nil
}

// onSessionChange runs the bootstrap for every notification: record the
// session, fetch its profile, then settle on loaded or missing. The loading
// flag clears whatever the fetch outcome.
func (a *ProfileAdapter) onSessionChange(change baas.SessionChange) {
	if change.Session == nil {
		a.mu.Lock()
		prev, ok := a.sessions[change.Token]
		delete(a.sessions, change.Token)
		a.mu.Unlock()

		if ok && prev.Session != nil {
			a.publishState(prev.Session.UID, SessionState{Status: StatusUnauthenticated})
		}
		return
	}

	session := change.Session
	a.mu.Lock()
	a.evictExpiredLocked()
	a.sessions[change.Token] = SessionState{Status: StatusInitializing, Session: session, Loading: true}
	a.mu.Unlock()

	profile, advisory := a.fetchProfile(context.Background(), session.UID)

	a.mu.Lock()
	st, ok := a.sessions[change.Token]
	if ok {
		st.Loading = false
		if profile != nil {
			st.Status = StatusProfileLoaded
			st.Profile = profile
		} else {
			st.Status = StatusProfileMissing
		}
		a.sessions[change.Token] = st
	}
	a.mu.Unlock()

	if advisory != nil {
		a.publishAdvisory(session.UID, advisory)
	}
	if ok {
		a.publishState(session.UID, st)
	}
}

// evictExpiredLocked drops sessions past their expiry. Callers hold a.mu.
func (a *ProfileAdapter) evictExpiredLocked() {
	for token, st := range a.sessions {
		if a.expired(st) {
			delete(a.sessions, token)
		}
	}
}

func (a *ProfileAdapter) fetchProfile(ctx context.Context, uid string) (*models.UserProfile, *Advisory) {
	doc, found, err := a.docs.GetDocument(ctx, baas.UsersCollection, uid)
	if err != nil {
		metrics.ProfileFetches.WithLabelValues(outcomeOf(err)).Inc()
		log.Warn().Err(err).Str("user_id", uid).Msg("Failed to fetch user profile")
		return nil, advisoryFor(err, msgLoadOffline, msgLoadFailed)
	}
	if !found {
		metrics.ProfileFetches.WithLabelValues("missing").Inc()
		return nil, nil
	}

	profile, err := fromDocument(doc)
	if err != nil {
		metrics.ProfileFetches.WithLabelValues(metrics.OutcomeError).Inc()
		log.Warn().Err(err).Str("user_id", uid).Msg("Failed to decode user profile")
		return nil, &Advisory{Kind: AdvisoryFailure, Message: msgLoadFailed}
	}
	metrics.ProfileFetches.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return profile, nil
}

func (a *ProfileAdapter) publishState(uid string, st SessionState) {
	if a.events == nil {
		return
	}
	a.events.Publish(uid, Event{Type: EventSession, Status: st.Status, Profile: st.Profile})
}

func (a *ProfileAdapter) publishAdvisory(uid string, advisory *Advisory) {
	metrics.Advisories.WithLabelValues(string(advisory.Kind)).Inc()
	if a.events == nil {
		return
	}
	a.events.Publish(uid, Event{Type: EventAdvisory, Advisory: advisory})
}

func outcomeOf(err error) string {
	if baas.IsUnavailable(err) {
		return metrics.OutcomeConnectivity
	}
	return metrics.OutcomeError
}

func toDocument(profile models.UserProfile) (baas.Document, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	doc := baas.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	delete(doc, baas.RevisionField)
	return doc, nil
}

func fromDocument(doc baas.Document) (*models.UserProfile, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	var profile models.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}
