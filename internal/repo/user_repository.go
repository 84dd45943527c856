package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Medilink/internal/db"
	"Medilink/internal/model"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var ErrUserExists = errors.New("an account with this email already exists")

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type userRepository struct {
	con       *mongo.Database
	mongoRepo *db.Repository[model.User]
	logger    *zap.Logger
}

func NewUserRepository(con *mongo.Database, repo *db.Repository[model.User], logger *zap.Logger) UserRepository {
	return &userRepository{
		con:       con,
		mongoRepo: repo,
		logger:    logger,
	}
}

// GetByEmail returns nil without error when no account matches.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, ErrMissingIdentity
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("email", email).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("failed to fetch user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("fetch user failed: %w", err)
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := db.NewFilter().Eq("email", user.Email).Build()
	exists, err := r.mongoRepo.Exists(ctx, filter)
	if err != nil {
		return fmt.Errorf("existence check failed: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	if _, err := r.mongoRepo.Create(ctx, *user); err != nil {
		r.logger.Error("failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("create user failed: %w", err)
	}

	r.logger.Info("user created", zap.String("email", user.Email), zap.String("role", user.Role))
	return nil
}
