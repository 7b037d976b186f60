package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// fakeAuth is an AuthProvider whose failures are set per test. It notifies
// observers synchronously, like AuthService.
type fakeAuth struct {
	mu        sync.Mutex
	observers []baas.SessionObserver
	issued    int

	signInErr  error
	createErr  error
	displayErr error
	signOutErr error
}

func (f *fakeAuth) ObserveSession(fn baas.SessionObserver) func() {
	f.mu.Lock()
	f.observers = append(f.observers, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeAuth) open(email string) *baas.Session {
	f.mu.Lock()
	f.issued++
	s := &baas.Session{UID: "uid-" + email, Email: email, Token: fmt.Sprintf("tok-%s-%d", email, f.issued)}
	f.mu.Unlock()
	f.notify(baas.SessionChange{Token: s.Token, Session: s})
	return s
}

func (f *fakeAuth) SignInWithPassword(_ context.Context, email, _ string) (*baas.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return f.open(email), nil
}

func (f *fakeAuth) CreateAccount(_ context.Context, email, _ string) (*baas.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.open(email), nil
}

func (f *fakeAuth) SetDisplayName(_ context.Context, s *baas.Session, name string) error {
	if f.displayErr != nil {
		return f.displayErr
	}
	s.DisplayName = name
	return nil
}

func (f *fakeAuth) SignOut(_ context.Context, s *baas.Session) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.notify(baas.SessionChange{Token: s.Token})
	return nil
}

func (f *fakeAuth) notify(change baas.SessionChange) {
	f.mu.Lock()
	observers := append([]baas.SessionObserver(nil), f.observers...)
	f.mu.Unlock()
	for _, fn := range observers {
		fn(change)
	}
}

// fakeDocs wraps a MemoryStore with injectable failures
type fakeDocs struct {
	*repository.MemoryStore
	mu       sync.Mutex
	getErr   error
	setErr   error
	setCalls int
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{MemoryStore: repository.NewMemoryStore()}
}

func (f *fakeDocs) GetDocument(ctx context.Context, collection, id string) (baas.Document, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.MemoryStore.GetDocument(ctx, collection, id)
}

func (f *fakeDocs) SetDocument(ctx context.Context, collection, id string, data baas.Document, opts baas.SetOptions) error {
	f.mu.Lock()
	f.setCalls++
	f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryStore.SetDocument(ctx, collection, id, data, opts)
}

func (f *fakeDocs) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]Event
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[string][]Event)}
}

func (p *recordingPublisher) Publish(userID string, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[userID] = append(p.events[userID], event)
}

func (p *recordingPublisher) advisories(userID string) []Advisory {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Advisory
	for _, ev := range p.events[userID] {
		if ev.Type == EventAdvisory && ev.Advisory != nil {
			out = append(out, *ev.Advisory)
		}
	}
	return out
}

func (p *recordingPublisher) lastStatus(userID string) SessionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	evs := p.events[userID]
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Type == EventSession {
			return evs[i].Status
		}
	}
	return ""
}

// newTestAuthService returns an AuthService over a fresh memory store with a
// cheap bcrypt cost
func newTestAuthService(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewAuthService(store, "test-secret", 0)
	svc.bcryptCost = bcrypt.MinCost
	return svc, store
}

func ptr[T any](v T) *T { return &v }
