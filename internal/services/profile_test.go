package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/models"
)

func seedProfile(t *testing.T, docs baas.DocumentStore, profile models.UserProfile) {
	t.Helper()
	doc, err := toDocument(profile)
	if err != nil {
		t.Fatalf("toDocument() error = %v", err)
	}
	if err := docs.SetDocument(context.Background(), baas.UsersCollection, profile.UID, doc, baas.SetOptions{}); err != nil {
		t.Fatalf("seed SetDocument() error = %v", err)
	}
}

func TestSignInConnectivity(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		wantConnectivity bool
	}{
		{"unavailable code", baas.ErrUnavailable, true},
		{"offline message", errors.New("client is offline"), true},
		{"other error", ErrInvalidCredentials, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &fakeAuth{signInErr: tt.err}
			a := NewProfileAdapter(auth, newFakeDocs(), nil, false)

			_, err := a.SignIn(context.Background(), "ada@example.com", "secret")
			if err == nil {
				t.Fatal("SignIn() error = nil")
			}
			if got := IsConnectivity(err); got != tt.wantConnectivity {
				t.Fatalf("IsConnectivity(%v) = %v, want %v", err, got, tt.wantConnectivity)
			}
			if tt.wantConnectivity && err.Error() != msgSignInOffline {
				t.Errorf("message = %q, want %q", err.Error(), msgSignInOffline)
			}
			if !tt.wantConnectivity && err != tt.err {
				t.Errorf("SignIn() error = %v, want unchanged %v", err, tt.err)
			}
		})
	}
}

func TestSignInBootstrapsProfile(t *testing.T) {
	docs := newFakeDocs()
	seedProfile(t, docs, models.UserProfile{UID: "uid-ada@example.com", Email: "ada@example.com", DisplayName: "Ada"})
	events := newRecordingPublisher()
	a := NewProfileAdapter(&fakeAuth{}, docs, events, false)

	session, err := a.SignIn(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	st := a.State(session.Token)
	if st.Status != StatusProfileLoaded {
		t.Fatalf("status = %q, want %q", st.Status, StatusProfileLoaded)
	}
	if st.Loading {
		t.Error("loading flag still set")
	}
	if st.Profile == nil || st.Profile.DisplayName != "Ada" {
		t.Errorf("profile = %+v, want display name Ada", st.Profile)
	}
	if got := events.lastStatus(session.UID); got != StatusProfileLoaded {
		t.Errorf("published status = %q, want %q", got, StatusProfileLoaded)
	}
}

func TestBootstrapWithoutDocument(t *testing.T) {
	a := NewProfileAdapter(&fakeAuth{}, newFakeDocs(), nil, false)

	session, err := a.SignIn(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	st := a.State(session.Token)
	if st.Status != StatusProfileMissing || st.Loading || st.Profile != nil {
		t.Fatalf("state = %+v, want profile missing and not loading", st)
	}
}

func TestBootstrapFetchFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind AdvisoryKind
		wantMsg  string
	}{
		{"offline", baas.ErrUnavailable, AdvisoryOffline, msgLoadOffline},
		{"generic", errors.New("permission denied"), AdvisoryFailure, msgLoadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := newFakeDocs()
			docs.getErr = tt.err
			events := newRecordingPublisher()
			a := NewProfileAdapter(&fakeAuth{}, docs, events, false)

			session, err := a.SignIn(context.Background(), "ada@example.com", "secret")
			if err != nil {
				t.Fatalf("SignIn() error = %v; fetch failures must not fail sign-in", err)
			}
			st := a.State(session.Token)
			if st.Loading {
				t.Error("loading flag must clear after a failed fetch")
			}
			if st.Status != StatusProfileMissing {
				t.Errorf("status = %q, want %q", st.Status, StatusProfileMissing)
			}
			adv := events.advisories(session.UID)
			if len(adv) != 1 || adv[0].Kind != tt.wantKind || adv[0].Message != tt.wantMsg {
				t.Errorf("advisories = %+v, want one %s %q", adv, tt.wantKind, tt.wantMsg)
			}
		})
	}
}

func TestRegisterWritesSeededProfile(t *testing.T) {
	auth, _ := newTestAuthService(t)
	docs := newFakeDocs()
	a := NewProfileAdapter(auth, docs, nil, false)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	session, err := a.Register(context.Background(), "ada@example.com", "secret1", "Ada")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if session.DisplayName != "Ada" {
		t.Errorf("session display name = %q, want Ada", session.DisplayName)
	}

	doc, found, err := docs.GetDocument(context.Background(), baas.UsersCollection, session.UID)
	if err != nil || !found {
		t.Fatalf("profile document found=%v err=%v", found, err)
	}
	profile, err := fromDocument(doc)
	if err != nil {
		t.Fatalf("fromDocument() error = %v", err)
	}
	if profile.UID != session.UID || profile.Email != "ada@example.com" || profile.DisplayName != "Ada" {
		t.Errorf("profile = %+v", profile)
	}
	if profile.SavedDestinations == nil || len(profile.SavedDestinations) != 0 {
		t.Errorf("saved destinations = %v, want empty list", profile.SavedDestinations)
	}
	if profile.TravelHistory == nil || len(profile.TravelHistory) != 0 {
		t.Errorf("travel history = %v, want empty list", profile.TravelHistory)
	}
	if !profile.CreatedAt.Equal(fixed) {
		t.Errorf("createdAt = %v, want %v", profile.CreatedAt, fixed)
	}

	st := a.State(session.Token)
	if st.Status != StatusProfileLoaded || st.Profile == nil {
		t.Errorf("state = %+v, want profile loaded", st)
	}
}

func TestRegisterLeavesOrphanedIdentityWhenProfileWriteFails(t *testing.T) {
	auth, _ := newTestAuthService(t)
	docs := newFakeDocs()
	writeErr := errors.New("permission denied")
	docs.setErr = writeErr
	a := NewProfileAdapter(auth, docs, nil, false)

	session, err := a.Register(context.Background(), "ada@example.com", "secret1", "Ada")
	if !errors.Is(err, writeErr) {
		t.Fatalf("Register() error = %v, want %v", err, writeErr)
	}
	if IsConnectivity(err) {
		t.Fatal("non-offline failure must not become a connectivity error")
	}

	// The identity survives without a profile document
	if _, err := auth.SignInWithPassword(context.Background(), "ada@example.com", "secret1"); err != nil {
		t.Fatalf("identity should still exist: %v", err)
	}
	if _, found, _ := docs.MemoryStore.GetDocument(context.Background(), baas.UsersCollection, session.UID); found {
		t.Fatal("no profile document should have been written")
	}
	if st := a.State(session.Token); st.Status != StatusProfileMissing {
		t.Errorf("status = %q, want %q", st.Status, StatusProfileMissing)
	}
}

func TestRegisterConnectivity(t *testing.T) {
	tests := []struct {
		name  string
		auth  *fakeAuth
		setup func(*fakeDocs)
	}{
		{"create account offline", &fakeAuth{createErr: baas.ErrUnavailable}, func(*fakeDocs) {}},
		{"display name offline", &fakeAuth{displayErr: baas.ErrUnavailable}, func(*fakeDocs) {}},
		{"document write offline", &fakeAuth{}, func(d *fakeDocs) { d.setErr = baas.ErrUnavailable }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := newFakeDocs()
			tt.setup(docs)
			a := NewProfileAdapter(tt.auth, docs, nil, false)

			_, err := a.Register(context.Background(), "ada@example.com", "secret1", "Ada")
			if !IsConnectivity(err) || err.Error() != msgRegisterOffline {
				t.Fatalf("Register() error = %v, want connectivity %q", err, msgRegisterOffline)
			}
		})
	}
}

func TestUpdateProfileWithoutSessionIsNoop(t *testing.T) {
	docs := newFakeDocs()
	a := NewProfileAdapter(&fakeAuth{}, docs, nil, false)

	profile, advisory, err := a.UpdateProfile(context.Background(), "unknown-token", ProfileUpdate{DisplayName: ptr("x")})
	if profile != nil || advisory != nil || err != nil {
		t.Fatalf("UpdateProfile() = %v, %v, %v; want nils", profile, advisory, err)
	}
	if docs.calls() != 0 {
		t.Fatalf("store writes = %d, want 0", docs.calls())
	}
}

func TestUpdateProfileWithMissingProfileIsNoop(t *testing.T) {
	docs := newFakeDocs()
	a := NewProfileAdapter(&fakeAuth{}, docs, nil, false)
	session, _ := a.SignIn(context.Background(), "ada@example.com", "secret")

	profile, advisory, err := a.UpdateProfile(context.Background(), session.Token, ProfileUpdate{DisplayName: ptr("x")})
	if profile != nil || advisory != nil || err != nil || docs.calls() != 0 {
		t.Fatalf("UpdateProfile() = %v, %v, %v with %d writes; want no-op", profile, advisory, err, docs.calls())
	}
}

func TestUpdateProfileMergesAndReplacesLocalProfile(t *testing.T) {
	docs := newFakeDocs()
	seedProfile(t, docs, models.UserProfile{
		UID:               "uid-ada@example.com",
		Email:             "ada@example.com",
		DisplayName:       "Ada",
		Bio:               "engineer",
		SavedDestinations: []string{"1"},
	})
	a := NewProfileAdapter(&fakeAuth{}, docs, nil, false)
	session, _ := a.SignIn(context.Background(), "ada@example.com", "secret")

	updated, advisory, err := a.UpdateProfile(context.Background(), session.Token, ProfileUpdate{DisplayName: ptr("Countess")})
	if err != nil || advisory != nil {
		t.Fatalf("UpdateProfile() advisory=%v err=%v", advisory, err)
	}
	if updated.DisplayName != "Countess" || updated.Bio != "engineer" || !slices.Equal(updated.SavedDestinations, []string{"1"}) {
		t.Errorf("updated = %+v", updated)
	}
	if st := a.State(session.Token); st.Profile.DisplayName != "Countess" {
		t.Errorf("local profile display name = %q, want Countess", st.Profile.DisplayName)
	}

	doc, _, _ := docs.GetDocument(context.Background(), baas.UsersCollection, session.UID)
	if doc["displayName"] != "Countess" || doc["bio"] != "engineer" {
		t.Errorf("stored document = %v", doc)
	}
}

func TestUpdateProfileFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind AdvisoryKind
		wantMsg  string
	}{
		{"offline", baas.ErrUnavailable, AdvisoryOffline, msgSaveOffline},
		{"generic", errors.New("quota exceeded"), AdvisoryFailure, msgSaveFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := newFakeDocs()
			seedProfile(t, docs, models.UserProfile{UID: "uid-ada@example.com", DisplayName: "Ada"})
			events := newRecordingPublisher()
			a := NewProfileAdapter(&fakeAuth{}, docs, events, false)
			session, _ := a.SignIn(context.Background(), "ada@example.com", "secret")
			docs.setErr = tt.err

			updated, advisory, err := a.UpdateProfile(context.Background(), session.Token, ProfileUpdate{DisplayName: ptr("Countess")})
			if err != tt.err {
				t.Fatalf("UpdateProfile() error = %v, want %v", err, tt.err)
			}
			if updated != nil {
				t.Errorf("updated = %+v, want nil", updated)
			}
			if advisory == nil || advisory.Kind != tt.wantKind || advisory.Message != tt.wantMsg {
				t.Errorf("advisory = %+v, want %s %q", advisory, tt.wantKind, tt.wantMsg)
			}
			if got := a.State(session.Token).Profile.DisplayName; got != "Ada" {
				t.Errorf("local display name = %q, want unchanged Ada", got)
			}
			if adv := events.advisories(session.UID); len(adv) != 1 {
				t.Errorf("published advisories = %+v, want 1", adv)
			}
		})
	}
}

func TestConcurrentTabsLastWriteWins(t *testing.T) {
	docs := newFakeDocs()
	seedProfile(t, docs, models.UserProfile{UID: "uid-ada@example.com", DisplayName: "Ada", Bio: "old"})
	a := NewProfileAdapter(&fakeAuth{}, docs, nil, false)
	ctx := context.Background()

	tabA, _ := a.SignIn(ctx, "ada@example.com", "secret")
	tabB, _ := a.SignIn(ctx, "ada@example.com", "secret")

	if _, _, err := a.UpdateProfile(ctx, tabA.Token, ProfileUpdate{DisplayName: ptr("From A")}); err != nil {
		t.Fatalf("tab A update: %v", err)
	}
	if _, _, err := a.UpdateProfile(ctx, tabB.Token, ProfileUpdate{Bio: ptr("From B")}); err != nil {
		t.Fatalf("tab B update: %v", err)
	}

	// Tab B wrote its stale copy of the whole profile over tab A's change
	doc, _, _ := docs.GetDocument(ctx, baas.UsersCollection, "uid-ada@example.com")
	if doc["displayName"] != "Ada" || doc["bio"] != "From B" {
		t.Fatalf("stored document = %v, want tab B's full profile", doc)
	}
}

func TestRevisionCheckRejectsStaleTab(t *testing.T) {
	docs := newFakeDocs()
	seedProfile(t, docs, models.UserProfile{UID: "uid-ada@example.com", DisplayName: "Ada"})
	a := NewProfileAdapter(&fakeAuth{}, docs, nil, true)
	ctx := context.Background()

	tabA, _ := a.SignIn(ctx, "ada@example.com", "secret")
	tabB, _ := a.SignIn(ctx, "ada@example.com", "secret")

	if _, _, err := a.UpdateProfile(ctx, tabA.Token, ProfileUpdate{DisplayName: ptr("From A")}); err != nil {
		t.Fatalf("tab A update: %v", err)
	}
	// Tab A's second write uses the revision it got back
	if _, _, err := a.UpdateProfile(ctx, tabA.Token, ProfileUpdate{Bio: ptr("again")}); err != nil {
		t.Fatalf("tab A second update: %v", err)
	}
	_, advisory, err := a.UpdateProfile(ctx, tabB.Token, ProfileUpdate{Bio: ptr("From B")})
	if !errors.Is(err, baas.ErrRevisionConflict) {
		t.Fatalf("tab B update error = %v, want ErrRevisionConflict", err)
	}
	if advisory == nil || advisory.Kind != AdvisoryFailure {
		t.Errorf("advisory = %+v, want failure", advisory)
	}
}

func TestSignOutClearsLocalStateEvenOnFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"provider succeeds", nil},
		{"provider fails", baas.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := newFakeDocs()
			seedProfile(t, docs, models.UserProfile{UID: "uid-ada@example.com"})
			auth := &fakeAuth{}
			events := newRecordingPublisher()
			a := NewProfileAdapter(auth, docs, events, false)
			session, _ := a.SignIn(context.Background(), "ada@example.com", "secret")
			auth.signOutErr = tt.err

			if err := a.SignOut(context.Background(), session.Token); err != nil {
				t.Fatalf("SignOut() error = %v, want nil", err)
			}
			st := a.State(session.Token)
			if st.Status != StatusUnauthenticated || st.Session != nil || st.Profile != nil {
				t.Errorf("state = %+v, want cleared", st)
			}
			if got := events.lastStatus(session.UID); got != StatusUnauthenticated {
				t.Errorf("published status = %q, want %q", got, StatusUnauthenticated)
			}
		})
	}
}

func TestAuthenticateResumesKnownToken(t *testing.T) {
	auth, _ := newTestAuthService(t)
	docs := newFakeDocs()
	first := NewProfileAdapter(auth, docs, nil, false)
	session, err := first.Register(context.Background(), "ada@example.com", "secret1", "Ada")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	first.Close()

	// A fresh adapter has no state for the token until it is resumed
	restarted := NewProfileAdapter(auth, docs, nil, false)
	if st := restarted.State(session.Token); st.Status != StatusUnauthenticated {
		t.Fatalf("status before resume = %q", st.Status)
	}
	st, err := restarted.Authenticate(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if st.Status != StatusProfileLoaded || st.Profile.DisplayName != "Ada" {
		t.Errorf("state = %+v, want loaded profile for Ada", st)
	}

	if _, err := restarted.Authenticate(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Authenticate(garbage) error = %v, want ErrInvalidToken", err)
	}
}

// gatedResumer holds Resume until release is closed and counts the calls
type gatedResumer struct {
	*AuthService
	calls   atomic.Int32
	release chan struct{}
}

func (g *gatedResumer) Resume(ctx context.Context, token string) (*baas.Session, error) {
	g.calls.Add(1)
	<-g.release
	return g.AuthService.Resume(ctx, token)
}

func TestConcurrentResumeBootstrapsOnce(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	session, err := svc.CreateAccount(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	docs := newFakeDocs()
	seedProfile(t, docs, models.UserProfile{UID: session.UID, DisplayName: "Ada"})

	auth := &gatedResumer{AuthService: svc, release: make(chan struct{})}
	a := NewProfileAdapter(auth, docs, nil, false)

	const callers = 8
	states := make([]SessionState, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			states[i], errs[i] = a.Authenticate(ctx, session.Token)
		}()
	}
	close(auth.release)
	wg.Wait()

	if got := auth.calls.Load(); got != 1 {
		t.Errorf("Resume calls = %d, want 1", got)
	}
	for i := range callers {
		if errs[i] != nil || states[i].Status != StatusProfileLoaded || states[i].Profile == nil {
			t.Errorf("caller %d: state = %v, err = %v", i, states[i].Status, errs[i])
		}
	}
}
