package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"moodchat/config"
	"moodchat/internal/domain/user"
	"moodchat/internal/repository"
	moodchat_errors "moodchat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryHour) * time.Hour,
	}
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresIn int64
	User      user.User
}

type AccessClaims struct {
	UserID   string `json:"sub"`
	Username string `json:"name"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Username == "" || in.Email == "" || len(in.Password) < 6 {
		return AuthResult{}, moodchat_errors.ErrInvalidInput
	}

	if err := s.ensureIdentityAvailable(ctx, in.Username, in.Email); err != nil {
		return AuthResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = in.Username
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		return AuthResult{}, err
	}

	token, expiresIn, err := s.newAccessToken(*newUser)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, ExpiresIn: expiresIn, User: *newUser}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, moodchat_errors.ErrNotFound) {
			return AuthResult{}, moodchat_errors.ErrUnauthorized
		}
		return AuthResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return AuthResult{}, moodchat_errors.ErrUnauthorized
	}

	token, expiresIn, err := s.newAccessToken(u)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, ExpiresIn: expiresIn, User: u}, nil
}

// Logout records the user as offline with a last-seen timestamp. The
// websocket disconnect path does the same; this covers clients that log
// out over HTTP before the socket closes.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.SetOnline(ctx, userID, false, time.Now())
}

func (s *AuthService) ParseAccessToken(token string) (AccessClaims, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, moodchat_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return AccessClaims{}, moodchat_errors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) newAccessToken(u user.User) (string, int64, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   u.ID.String(),
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", 0, err
	}
	return token, int64(s.accessTTL.Seconds()), nil
}

func (s *AuthService) ensureIdentityAvailable(ctx context.Context, username, email string) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return moodchat_errors.ErrAlreadyExists
	} else if !errors.Is(err, moodchat_errors.ErrNotFound) {
		return err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return moodchat_errors.ErrAlreadyExists
	} else if !errors.Is(err, moodchat_errors.ErrNotFound) {
		return err
	}
	return nil
}
