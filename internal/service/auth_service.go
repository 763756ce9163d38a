package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"shop_backend/internal/model"
	"shop_backend/internal/repository"
	"shop_backend/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserAlreadyExists  = errors.New("existing user found with same email address")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password must not exceed 72 bytes")
)

// dummyHash is compared against for unknown emails so that login takes the same time
// whether or not the account exists.
var dummyHash = sync.OnceValue(func() string {
	hash, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		log.Printf("ERROR: failed to prepare login dummy hash: %v", err)
		return ""
	}
	return hash
})

// AuthService provides authentication related services
type AuthService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	userRepo          repository.UserRepository
	jwtUtil           *utils.JWTUtil
	initialAdminEmail string
}

// NewAuthService creates a new AuthService. A signup with initialAdminEmail is granted the admin role.
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil, initialAdminEmail string) AuthService {
	return &authService{
		userRepo:          userRepo,
		jwtUtil:           jwtUtil,
		initialAdminEmail: initialAdminEmail,
	}
}

// Signup creates a new user account with an empty cart
func (s *authService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, string, error) {
	existingUser, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, "", ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, "", ErrPasswordTooLong
		}
		return nil, "", err
	}

	role := model.RoleUser
	if s.initialAdminEmail != "" && req.Email == s.initialAdminEmail {
		role = model.RoleAdmin
		log.Printf("INFO: User %s is being registered as ADMIN via INITIAL_ADMIN_EMAIL.", req.Email)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		CartData:     model.NewCart(),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, "", ErrUserAlreadyExists
		}
		return nil, "", fmt.Errorf("failed to create user in repository: %w", err)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		log.Printf("ERROR: User %s (ID: %s) created, but failed to generate token: %v", user.Email, user.ID, err)
		return user, "", fmt.Errorf("user created, but failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a fresh token
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		utils.CheckPasswordHash(password, dummyHash())
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}
