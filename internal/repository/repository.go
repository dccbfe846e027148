package repository

import (
	"fmt"

	"github.com/dmorandi/auth-backend/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User  UserRepository
	Token TokenRepository
}

// NewPostgresRepositories creates repositories backed by PostgreSQL.
func NewPostgresRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:  NewPostgresUserRepository(db),
		Token: NewPostgresTokenRepository(db),
	}
}

// NewMongoRepositories creates repositories backed by MongoDB.
func NewMongoRepositories(db *database.Mongo) *Repositories {
	return &Repositories{
		User:  NewMongoUserRepository(db),
		Token: NewMongoTokenRepository(db),
	}
}

// New selects the repository backend for the configured driver. The
// selection happens exactly once at startup.
func New(driver string, pg *database.Postgres, mongo *database.Mongo) (*Repositories, error) {
	switch driver {
	case "postgres":
		if pg == nil {
			return nil, fmt.Errorf("postgres driver selected but no postgres connection provided")
		}
		return NewPostgresRepositories(pg), nil
	case "mongo":
		if mongo == nil {
			return nil, fmt.Errorf("mongo driver selected but no mongo connection provided")
		}
		return NewMongoRepositories(mongo), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}
