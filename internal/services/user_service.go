package services

import (
	"context"
	"errors"
	"strings"

	"webstore/internal/models"
	"webstore/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type UserService interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id uint, input UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id, actingUserID uint) error
}

// UserUpdate carries the fields to change; nil fields are left as they are.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

type userService struct {
	store  repository.Store
	cost   int
	logger *zap.Logger
}

func NewUserService(store repository.Store, logger *zap.Logger) UserService {
	return &userService{store: store, cost: bcrypt.DefaultCost, logger: logger.Named("users")}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User, password string) error {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if user.Username == "" || user.Email == "" {
		return invalidArgument("username and email are required")
	}
	if len(password) < minPasswordLength {
		return invalidArgument("password must be at least %d characters", minPasswordLength)
	}
	if user.Role == "" {
		user.Role = string(models.SimpleUser)
	}
	if !models.ValidRole(user.Role) {
		return invalidArgument("invalid role %q", user.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.store.Users().Create(ctx, user); err != nil {
		return conflict(err, "user %q", user.Username)
	}
	s.logger.Info("user created", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return nil
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords both return ErrUnauthorized.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Users().GetAll(ctx)
}

func (s *userService) UpdateUser(ctx context.Context, id uint, input UserUpdate) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	if input.Username != nil {
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if user.Username == "" || user.Email == "" {
		return nil, invalidArgument("username and email are required")
	}
	if input.Role != nil {
		if !models.ValidRole(*input.Role) {
			return nil, invalidArgument("invalid role %q", *input.Role)
		}
		user.Role = *input.Role
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, invalidArgument("password must be at least %d characters", minPasswordLength)
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.cost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, conflict(notFound(err, "User not found"), "user %q", user.Username)
	}
	s.logger.Info("user updated",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role),
		zap.Bool("password_changed", input.Password != nil))
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id, actingUserID uint) error {
	if id == actingUserID {
		return invalidArgument("Cannot delete your own account")
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return notFound(err, "User not found")
	}
	s.logger.Info("user deleted", zap.Uint("user_id", id))
	return nil
}
