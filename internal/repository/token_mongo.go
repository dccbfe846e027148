package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/pkg/database"
)

// mongoTokenRepository implements TokenRepository against MongoDB
type mongoTokenRepository struct {
	tokens *mongo.Collection
}

// NewMongoTokenRepository creates a new MongoDB token repository
func NewMongoTokenRepository(db *database.Mongo) TokenRepository {
	return &mongoTokenRepository{tokens: db.Collection("auth_tokens")}
}

// Create inserts a new auth token document
func (r *mongoTokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.tokens.InsertOne(ctx, token)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("token value taken: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// FindByValue retrieves a token by its exact value
func (r *mongoTokenRepository) FindByValue(ctx context.Context, value string) (*domain.AuthToken, error) {
	token := &domain.AuthToken{}
	err := r.tokens.FindOne(ctx, bson.M{"token": value}).Decode(token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by value: %w", err)
	}
	return token, nil
}

// FindAllByUser retrieves all tokens owned by a user
func (r *mongoTokenRepository) FindAllByUser(ctx context.Context, userID string) ([]*domain.AuthToken, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.tokens.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens by user id: %w", err)
	}
	defer cursor.Close(ctx)

	var tokens []*domain.AuthToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode tokens: %w", err)
	}
	return tokens, nil
}

// Delete removes a token by ID. Deleting a missing id is not an error.
func (r *mongoTokenRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.deleteWhere(ctx, bson.M{"_id": id})
}

// DeleteByValue removes a token by its exact value. DeleteOne is atomic
// per document, so of two concurrent callers at most one observes true.
func (r *mongoTokenRepository) DeleteByValue(ctx context.Context, value string) (bool, error) {
	return r.deleteWhere(ctx, bson.M{"token": value})
}

// DeleteAllByUser removes every token owned by a user
func (r *mongoTokenRepository) DeleteAllByUser(ctx context.Context, userID string) (bool, error) {
	result, err := r.tokens.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return false, fmt.Errorf("failed to delete tokens: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// DeleteExpired sweeps all expired tokens
func (r *mongoTokenRepository) DeleteExpired(ctx context.Context) (bool, error) {
	result, err := r.tokens.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	if err != nil {
		return false, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return result.DeletedCount > 0, nil
}

func (r *mongoTokenRepository) deleteWhere(ctx context.Context, filter bson.M) (bool, error) {
	result, err := r.tokens.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete token: %w", err)
	}
	return result.DeletedCount > 0, nil
}
