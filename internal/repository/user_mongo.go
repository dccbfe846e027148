package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmorandi/auth-backend/internal/domain"
	"github.com/dmorandi/auth-backend/pkg/database"
)

// mongoUserRepository implements UserRepository against MongoDB
type mongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(db *database.Mongo) UserRepository {
	return &mongoUserRepository{users: db.Collection("users")}
}

// Create inserts a new user document. Emails are stored lower-cased.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(user.Email)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if dup := duplicateUserKeyError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by ID
func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail retrieves a user by email, case-insensitively.
func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// FindByUsername retrieves a user by username
func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindAll retrieves all users
func (r *mongoUserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	return r.findMany(ctx, bson.M{})
}

// FindByRole retrieves all users carrying the given role
func (r *mongoUserRepository) FindByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return r.findMany(ctx, bson.M{"roles": string(role)})
}

// Update applies a partial update; nil fields keep their stored value.
func (r *mongoUserRepository) Update(ctx context.Context, id string, fields *domain.UpdateUser) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if fields.Email != nil {
		set["email"] = strings.ToLower(*fields.Email)
	}
	if fields.Username != nil {
		set["username"] = *fields.Username
	}
	if fields.FirstName != nil {
		set["first_name"] = *fields.FirstName
	}
	if fields.LastName != nil {
		set["last_name"] = *fields.LastName
	}
	if fields.IsActive != nil {
		set["is_active"] = *fields.IsActive
	}
	if fields.Roles != nil {
		set["roles"] = fields.Roles
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	user := &domain.User{}

	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		if dup := duplicateUserKeyError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Delete removes a user document and reports whether one was removed.
func (r *mongoUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// ExistsByEmail reports whether a user with the given email exists
func (r *mongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{"email": strings.ToLower(email)})
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	user := &domain.User{}
	err := r.users.FindOne(ctx, filter).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *mongoUserRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// duplicateUserKeyError maps a duplicate key error to the matching
// sentinel, keyed on the violated index name.
func duplicateUserKeyError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "username_1") {
		return fmt.Errorf("username taken: %w", ErrDuplicateUsername)
	}
	return fmt.Errorf("email taken: %w", ErrDuplicateEmail)
}
