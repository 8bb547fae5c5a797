package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type AuthService struct {
	provider    AuthProvider
	secret      string
	accessTTL   time.Duration
	refreshTTL  time.Duration
	adminEmails map[string]struct{}

	now   func() time.Time
	newID func() string
}

type AuthProvider interface {
	SaveUser(ctx context.Context, passHash string, user domains.User) error
	GetUserByEmail(ctx context.Context, email string) (domains.User, error)
	GetUserByID(ctx context.Context, id string) (domains.User, error)
}

type AuthOptions struct {
	Secret      string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	AdminEmails []string
}

func NewAuthService(provider AuthProvider, opts AuthOptions) *AuthService {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	admins := make(map[string]struct{}, len(opts.AdminEmails))
	for _, email := range opts.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &AuthService{
		provider:    provider,
		secret:      opts.Secret,
		accessTTL:   opts.AccessTTL,
		refreshTTL:  opts.RefreshTTL,
		adminEmails: admins,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (s *AuthService) Register(ctx context.Context, registration domains.UserRegistration) (domains.User, error) {
	email := strings.ToLower(strings.TrimSpace(registration.Email))
	if email == "" || registration.Password == "" {
		return domains.User{}, ErrInvalidRegistration
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("Register: hash password failed", "err", err)
		return domains.User{}, err
	}

	user := domains.User{
		ID:        s.newID(),
		Username:  strings.TrimSpace(registration.Username),
		Email:     email,
		Role:      domains.RoleUser,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	if _, ok := s.adminEmails[email]; ok {
		user.Role = domains.RoleAdmin
	}
	if user.Username == "" {
		user.Username = email
	}

	if err := s.provider.SaveUser(ctx, string(passHash), user); err != nil {
		if !errors.Is(err, storage.ErrUserExist) {
			slog.Error("Register: save user failed", "err", err)
		}
		return domains.User{}, err
	}
	slog.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (string, string, error) {
	user, err := s.provider.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", "", ErrPasswordIncorrect
		}
		slog.Error("Login: fetch user failed", "err", err)
		return "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", ErrPasswordIncorrect
	}
	if !user.Active {
		return "", "", ErrAccountDeactivated
	}

	accessToken, refreshToken, err := s.GenerateTokens(user)
	if err != nil {
		slog.Error("Login: generate tokens failed", "err", err)
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthService) GenerateTokens(user domains.User) (accessToken string, refreshToken string, err error) {
	now := s.now()

	accessClaims := jwt.MapClaims{
		"sub":  user.ID,
		"exp":  now.Add(s.accessTTL).Unix(),
		"type": tokenTypeAccess,
	}
	accessToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	refreshClaims := jwt.MapClaims{
		"sub":  user.ID,
		"exp":  now.Add(s.refreshTTL).Unix(),
		"type": tokenTypeRefresh,
	}
	refreshToken, err = jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.secret))
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	sub, err := s.subject(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", "", err
	}

	user, err := s.provider.GetUserByID(ctx, sub)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", "", ErrTokenIncorrect
		}
		return "", "", err
	}
	if !user.Active {
		return "", "", ErrAccountDeactivated
	}
	return s.GenerateTokens(user)
}

func (s *AuthService) Me(ctx context.Context, token string) (domains.User, error) {
	sub, err := s.subject(token, tokenTypeAccess)
	if err != nil {
		return domains.User{}, err
	}
	user, err := s.provider.GetUserByID(ctx, sub)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.User{}, ErrTokenIncorrect
		}
		return domains.User{}, err
	}
	if !user.Active {
		return domains.User{}, ErrAccountDeactivated
	}
	return user, nil
}

// Authenticate resolves an access token to the caller it was issued for.
// Tokens of deactivated accounts are refused.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domains.Principal, error) {
	user, err := s.Me(ctx, token)
	if err != nil {
		return domains.Principal{}, err
	}
	return user.Principal(), nil
}

func (s *AuthService) subject(raw string, wantType string) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrTokenIncorrect
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrTokenIncorrect
	}
	if claims["type"] != wantType {
		return "", ErrTokenIncorrect
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrTokenIncorrect
	}
	return sub, nil
}
