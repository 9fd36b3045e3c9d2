package service

import (
	"context"
	"time"

	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	repository "github.com/farma-ya/pharmacy-platform/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListCouriers(ctx context.Context) ([]*models.User, error)
}

type userService struct {
	repo      repository.UserRepository
	rateLimit repository.RateLimitRepository
	jwtKey    []byte
	tokenTTL  time.Duration
}

func NewUserService(repo repository.UserRepository, rateLimit repository.RateLimitRepository, jwtKey []byte, tokenTTL time.Duration) UserService {
	return &userService{
		repo:      repo,
		rateLimit: rateLimit,
		jwtKey:    jwtKey,
		tokenTTL:  tokenTTL,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	existingUser, _ := s.repo.GetUserByUsername(ctx, req.Username)
	if existingUser != nil {
		return nil, appErrors.DuplicateEntryError("Username already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
		RoleID:   models.RoleIDFor(models.RoleCustomer),
	}

	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	allowed, remaining, retryAfter, err := s.rateLimit.CheckLoginRateLimit(ctx, req.Username)
	if err != nil {
		return nil, appErrors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid username or password",
			RemainingTries: remaining,
		}, nil
	}

	claims := &models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	// Earlier failed attempts should not linger once the user is in.
	if err := s.rateLimit.ResetLoginAttempts(ctx, req.Username); err != nil {
		return nil, appErrors.ThirdPartyError("Failed to reset login attempts").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     tokenString,
		ExpiresIn: int(time.Until(claims.ExpiresAt.Time).Seconds()),
		Role:      user.Role(),
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, appErrors.NotFoundError("User not found").WithError(err)
	}

	return user, nil
}

func (s *userService) ListCouriers(ctx context.Context) ([]*models.User, error) {

	couriers, err := s.repo.ListUsersByRole(ctx, models.RoleIDFor(models.RoleCourier))
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list couriers").WithError(err)
	}

	return couriers, nil
}
