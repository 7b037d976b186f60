package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel-discovery-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoIdentityRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create", func(mt *mtest.T) {
		repo := &MongoIdentityRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := repo.Create(ctx, &models.Identity{UID: "u1", Email: " Ada@Example.com ", PasswordHash: "h", CreatedAt: time.Now()})
		if err != nil {
			mt.Fatalf("Create() error = %v", err)
		}
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := &MongoIdentityRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))
		err := repo.Create(ctx, &models.Identity{UID: "u2", Email: "ada@example.com"})
		if !errors.Is(err, ErrDuplicateEmail) {
			mt.Errorf("Create() error = %v, want ErrDuplicateEmail", err)
		}
	})

	mt.Run("get by email", func(mt *mtest.T) {
		repo := &MongoIdentityRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.identities", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "email", Value: "ada@example.com"},
			{Key: "password_hash", Value: "h"},
			{Key: "display_name", Value: "Ada"},
		}))
		identity, err := repo.GetByEmail(ctx, "ADA@example.com")
		if err != nil {
			mt.Fatalf("GetByEmail() error = %v", err)
		}
		if identity.UID != "u1" || identity.DisplayName != "Ada" || identity.PasswordHash != "h" {
			mt.Errorf("identity = %+v", identity)
		}
	})

	mt.Run("missing identity", func(mt *mtest.T) {
		repo := &MongoIdentityRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.identities", mtest.FirstBatch))
		if _, err := repo.GetByID(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
			mt.Errorf("GetByID() error = %v, want ErrNotFound", err)
		}
	})

	mt.Run("update display name of missing identity", func(mt *mtest.T) {
		repo := &MongoIdentityRepository{coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		if err := repo.UpdateDisplayName(ctx, "nobody", "Ada"); !errors.Is(err, ErrNotFound) {
			mt.Errorf("UpdateDisplayName() error = %v, want ErrNotFound", err)
		}
	})
}
