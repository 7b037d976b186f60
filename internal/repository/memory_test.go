package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/models"
)

func TestMemoryStoreIdentities(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	identity := &models.Identity{UID: "u1", Email: "Ada@Example.com ", PasswordHash: "x", CreatedAt: time.Now()}
	if err := store.Create(ctx, identity); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, &models.Identity{UID: "u2", Email: "ada@example.com"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("Create() duplicate error = %v, want ErrDuplicateEmail", err)
	}

	got, err := store.GetByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.UID != "u1" {
		t.Errorf("GetByEmail() uid = %q, want u1", got.UID)
	}

	if err := store.UpdateDisplayName(ctx, "u1", "Ada"); err != nil {
		t.Fatalf("UpdateDisplayName() error = %v", err)
	}
	got, _ = store.GetByID(ctx, "u1")
	if got.DisplayName != "Ada" {
		t.Errorf("DisplayName = %q, want Ada", got.DisplayName)
	}

	if _, err := store.GetByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
	if err := store.UpdateDisplayName(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateDisplayName(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreGetAbsentDocument(t *testing.T) {
	doc, found, err := NewMemoryStore().GetDocument(context.Background(), baas.UsersCollection, "nobody")
	if err != nil || found || doc != nil {
		t.Fatalf("GetDocument() = %v, %v, %v; want nil, false, nil", doc, found, err)
	}
}

func TestMemoryStoreMergeKeepsUntouchedFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	initial := baas.Document{"uid": "u1", "displayName": "Ada", "bio": "hello"}
	if err := store.SetDocument(ctx, baas.UsersCollection, "u1", initial, baas.SetOptions{}); err != nil {
		t.Fatalf("SetDocument() error = %v", err)
	}
	if err := store.SetDocument(ctx, baas.UsersCollection, "u1", baas.Document{"displayName": "Grace"}, baas.SetOptions{Merge: true}); err != nil {
		t.Fatalf("SetDocument(merge) error = %v", err)
	}

	doc, found, err := store.GetDocument(ctx, baas.UsersCollection, "u1")
	if err != nil || !found {
		t.Fatalf("GetDocument() found=%v err=%v", found, err)
	}
	if doc["displayName"] != "Grace" {
		t.Errorf("displayName = %v, want Grace", doc["displayName"])
	}
	if doc["bio"] != "hello" {
		t.Errorf("bio = %v, want hello", doc["bio"])
	}
	if doc[baas.RevisionField] != int64(2) {
		t.Errorf("revision = %v, want 2", doc[baas.RevisionField])
	}
}

func TestMemoryStoreReplaceDropsFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.SetDocument(ctx, "c", "1", baas.Document{"a": "1", "b": "2"}, baas.SetOptions{})
	_ = store.SetDocument(ctx, "c", "1", baas.Document{"a": "3"}, baas.SetOptions{})

	doc, _, _ := store.GetDocument(ctx, "c", "1")
	if _, ok := doc["b"]; ok {
		t.Errorf("replace write kept field b: %v", doc)
	}
}

func TestMemoryStoreRevisionCheck(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rev := func(n int64) *int64 { return &n }

	if err := store.SetDocument(ctx, "c", "1", baas.Document{"a": 1}, baas.SetOptions{ExpectedRevision: rev(0)}); err != nil {
		t.Fatalf("first conditional write error = %v", err)
	}
	if err := store.SetDocument(ctx, "c", "1", baas.Document{"a": 2}, baas.SetOptions{Merge: true, ExpectedRevision: rev(0)}); !errors.Is(err, baas.ErrRevisionConflict) {
		t.Fatalf("stale write error = %v, want ErrRevisionConflict", err)
	}
	if err := store.SetDocument(ctx, "c", "1", baas.Document{"a": 3}, baas.SetOptions{Merge: true, ExpectedRevision: rev(1)}); err != nil {
		t.Fatalf("current write error = %v", err)
	}

	// Unconditional writes ignore the revision: last write wins
	if err := store.SetDocument(ctx, "c", "1", baas.Document{"a": 4}, baas.SetOptions{Merge: true}); err != nil {
		t.Fatalf("unconditional write error = %v", err)
	}
	doc, _, _ := store.GetDocument(ctx, "c", "1")
	if doc["a"] != float64(4) {
		t.Errorf("a = %v, want 4", doc["a"])
	}
}
