package auth

import (
	"context"
	"errors"
	"time"

	common_models "clientdesk/internal/common/models"
	"clientdesk/internal/features/audit"
	"clientdesk/internal/features/user"
	"clientdesk/pkg/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*common_models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	AuditService audit.AuditService
}

func NewAuthService(userRepo user.UserRepository, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email string) (*common_models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	newUser := &common_models.User{
		Username: username,
		Password: string(hashed),
		Email:    email,
		Roles:    []string{"user"},
		Status:   "active",
	}

	if err := s.UserRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "user", newUser.ID.Hex(), map[string]common_models.Change{
		"username": {New: username},
	})

	return newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(u.ID, u.Roles)
	if err != nil {
		return "", err
	}

	s.UserRepo.UpdateLastLogin(ctx, u.ID)
	s.AuditService.LogChange(ctx, common_models.AuditActionLogin, "user", u.ID.Hex(), map[string]common_models.Change{
		"last_login": {New: time.Now()},
	})

	return token, nil
}
