package repository

import (
	"context"
	"errors"
	"fmt"

	"travel-discovery-backend/internal/baas"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDocumentRepository stores each collection as a MongoDB collection with
// the document id as _id
type MongoDocumentRepository struct {
	db *mongo.Database
}

// NewMongoDocumentRepository creates a new MongoDB-backed document repository
func NewMongoDocumentRepository(db *mongo.Database) *MongoDocumentRepository {
	return &MongoDocumentRepository{db: db}
}

// GetDocument retrieves a document by id. Nested values come back as plain
// maps and slices via relaxed extended JSON.
func (r *MongoDocumentRepository) GetDocument(ctx context.Context, collection, id string) (baas.Document, bool, error) {
	raw, err := r.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get document: %w", classifyMongo(err))
	}

	ext, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode document: %w", err)
	}
	doc := baas.Document{}
	if err := json.Unmarshal(ext, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode document: %w", err)
	}
	delete(doc, "_id")
	return doc, true, nil
}

// SetDocument writes a document, bumping its revision field
func (r *MongoDocumentRepository) SetDocument(ctx context.Context, collection, id string, data baas.Document, opts baas.SetOptions) error {
	coll := r.db.Collection(collection)
	payload := bson.M{}
	for k, v := range data {
		if k != baas.RevisionField && k != "_id" {
			payload[k] = v
		}
	}

	filter := bson.M{"_id": id}
	if opts.ExpectedRevision != nil {
		filter[baas.RevisionField] = *opts.ExpectedRevision
	}

	var err error
	if opts.Merge {
		update := bson.M{
			"$set": payload,
			"$inc": bson.M{baas.RevisionField: 1},
		}
		_, err = coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	} else {
		next, revErr := r.nextRevision(ctx, coll, id, opts.ExpectedRevision)
		if revErr != nil {
			return revErr
		}
		payload[baas.RevisionField] = next
		_, err = coll.ReplaceOne(ctx, filter, payload, options.Replace().SetUpsert(true))
	}
	if err != nil {
		// A conditional upsert whose filter missed collides with the existing _id
		if opts.ExpectedRevision != nil && mongo.IsDuplicateKeyError(err) {
			return baas.ErrRevisionConflict
		}
		return fmt.Errorf("failed to set document: %w", classifyMongo(err))
	}
	return nil
}

func (r *MongoDocumentRepository) nextRevision(ctx context.Context, coll *mongo.Collection, id string, expected *int64) (int64, error) {
	if expected != nil {
		return *expected + 1, nil
	}
	var current struct {
		Revision int64 `bson:"revision"`
	}
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&current)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("failed to read revision: %w", classifyMongo(err))
	}
	return current.Revision + 1, nil
}

func classifyMongo(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return baas.Unavailable(err)
	}
	return err
}
