package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"lingo_backend/internal/config"
	"lingo_backend/internal/model"
	"lingo_backend/internal/repository"
	"lingo_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// Register 创建账号，新用户 XP 为 0，各等级为 1
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, util.ValidationError("invalid email address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, util.ValidationError("password must be at least %d characters", minPasswordLength)
	}

	exists, err := s.UserRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ConflictError(util.ErrEmailRegistered)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.NewUser(strings.TrimSpace(req.Name), email, string(hashedPassword))
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, util.ErrUserNotFound) {
		return nil, util.ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidLogin
	}

	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User:  UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Image: user.Image},
	}, nil
}
