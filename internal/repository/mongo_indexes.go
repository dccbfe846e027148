package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmorandi/auth-backend/pkg/database"
)

// EnsureMongoIndexes creates the unique and lookup indexes the Mongo
// repositories rely on. Called once at startup when the mongo driver is
// selected; the equivalent for PostgreSQL lives in the migrations.
func EnsureMongoIndexes(ctx context.Context, db *database.Mongo) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "roles", Value: 1}},
		},
	}

	if _, err := db.Collection("users").Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	tokenIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}

	if _, err := db.Collection("auth_tokens").Indexes().CreateMany(ctx, tokenIndexes); err != nil {
		return fmt.Errorf("failed to create token indexes: %w", err)
	}

	return nil
}
