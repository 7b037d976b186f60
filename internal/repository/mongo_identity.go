package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-discovery-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IdentitiesCollection holds auth identities for the mongo driver
const IdentitiesCollection = "identities"

type mongoIdentity struct {
	UID          string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	DisplayName  string    `bson:"display_name"`
	CreatedAt    time.Time `bson:"created_at"`
}

// MongoIdentityRepository stores auth identities in MongoDB keyed by uid
type MongoIdentityRepository struct {
	coll *mongo.Collection
}

// NewMongoIdentityRepository creates a new MongoDB-backed identity repository
func NewMongoIdentityRepository(db *mongo.Database) *MongoIdentityRepository {
	return &MongoIdentityRepository{coll: db.Collection(IdentitiesCollection)}
}

// EnsureIndexes creates the unique email index
func (r *MongoIdentityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_email"),
	})
	if err != nil {
		return fmt.Errorf("failed to create identity indexes: %w", classifyMongo(err))
	}
	return nil
}

// Create creates a new identity
func (r *MongoIdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	_, err := r.coll.InsertOne(ctx, mongoIdentity{
		UID:          identity.UID,
		Email:        normalizeEmail(identity.Email),
		PasswordHash: identity.PasswordHash,
		DisplayName:  identity.DisplayName,
		CreatedAt:    identity.CreatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create identity: %w", classifyMongo(err))
	}
	return nil
}

// GetByID retrieves an identity by UID
func (r *MongoIdentityRepository) GetByID(ctx context.Context, uid string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"_id": uid})
}

// GetByEmail retrieves an identity by email
func (r *MongoIdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

// UpdateDisplayName sets the display name of an identity
func (r *MongoIdentityRepository) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": bson.M{"display_name": displayName}})
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", classifyMongo(err))
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoIdentityRepository) findOne(ctx context.Context, filter bson.M) (*models.Identity, error) {
	var doc mongoIdentity
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get identity: %w", classifyMongo(err))
	}
	return &models.Identity{
		UID:          doc.UID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		DisplayName:  doc.DisplayName,
		CreatedAt:    doc.CreatedAt,
	}, nil
}
