package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	dashboardWindow   = 7 * 24 * time.Hour
)

type UserService struct {
	provider  UserProvider
	dashboard DashboardProvider
	now       func() time.Time
}

type UserProvider interface {
	ListUsers(ctx context.Context) ([]domains.User, error)
	GetUserByID(ctx context.Context, id string) (domains.User, error)
	UpdateUserProfile(ctx context.Context, id, username, email string) error
	UpdatePassword(ctx context.Context, id, passHash string) error
	SetUserActive(ctx context.Context, id string, active bool) error
}

type DashboardProvider interface {
	DashboardCounts(ctx context.Context, since time.Time) (domains.DashboardCounts, error)
}

func NewUserService(provider UserProvider, dashboard DashboardProvider) *UserService {
	return &UserService{
		provider:  provider,
		dashboard: dashboard,
		now:       time.Now,
	}
}

func (u *UserService) ListUsers(ctx context.Context, principal domains.Principal) ([]domains.User, error) {
	if !principal.Role.IsAdmin() {
		return nil, ErrForbidden
	}
	users, err := u.provider.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// SetAccountStatus activates or deactivates an account. Deactivated accounts can
// neither log in nor use tokens issued before the change.
func (u *UserService) SetAccountStatus(ctx context.Context, principal domains.Principal, userID, status string) (domains.User, error) {
	if !principal.Role.IsAdmin() {
		return domains.User{}, ErrForbidden
	}
	var active bool
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case domains.AccountActivate:
		active = true
	case domains.AccountDeactivate:
	default:
		return domains.User{}, ErrInvalidAccountStatus
	}

	user, err := u.user(ctx, userID)
	if err != nil {
		return domains.User{}, err
	}
	if err := u.provider.SetUserActive(ctx, user.ID, active); err != nil {
		slog.Error("SetAccountStatus failed", "err", err, "user_id", user.ID)
		return domains.User{}, err
	}
	user.Active = active
	slog.Info("account status changed", "user_id", user.ID, "active", active, "by", principal.UserID)
	return user, nil
}

// UpdateUser changes the username and email of an account. Callers may update
// themselves; admins may update anyone.
func (u *UserService) UpdateUser(ctx context.Context, principal domains.Principal, userID string, update domains.UserUpdate) (domains.User, error) {
	if principal.UserID != userID && !principal.Role.IsAdmin() {
		return domains.User{}, ErrForbidden
	}
	user, err := u.user(ctx, userID)
	if err != nil {
		return domains.User{}, err
	}

	if email := strings.ToLower(strings.TrimSpace(update.Email)); email != "" {
		user.Email = email
	}
	if username := strings.TrimSpace(update.Username); username != "" {
		user.Username = username
	}
	if err := u.provider.UpdateUserProfile(ctx, user.ID, user.Username, user.Email); err != nil {
		if !errors.Is(err, storage.ErrUserExist) {
			slog.Error("UpdateUser failed", "err", err, "user_id", user.ID)
		}
		return domains.User{}, err
	}
	return user, nil
}

func (u *UserService) UpdatePassword(ctx context.Context, principal domains.Principal, password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	user, err := u.user(ctx, principal.UserID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil {
		return ErrSamePassword
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("UpdatePassword: hash password failed", "err", err)
		return err
	}
	if err := u.provider.UpdatePassword(ctx, user.ID, string(passHash)); err != nil {
		slog.Error("UpdatePassword failed", "err", err, "user_id", user.ID)
		return err
	}
	return nil
}

// Dashboard reports platform totals. Growth values are the share, in percent, of
// each total created during the last seven days.
func (u *UserService) Dashboard(ctx context.Context, principal domains.Principal) (domains.Dashboard, error) {
	if !principal.Role.IsAdmin() {
		return domains.Dashboard{}, ErrForbidden
	}
	counts, err := u.dashboard.DashboardCounts(ctx, u.now().UTC().Add(-dashboardWindow))
	if err != nil {
		slog.Error("Dashboard: count failed", "err", err)
		return domains.Dashboard{}, err
	}

	byRole := map[string]int64{
		string(domains.RoleUser):  0,
		string(domains.RoleAdmin): 0,
	}
	for role, n := range counts.UsersByRole {
		byRole[string(role)] = n
	}
	return domains.Dashboard{
		TotalSurveys:     counts.TotalSurveys,
		TotalUsers:       counts.TotalUsers,
		DeactivatedUsers: counts.DeactivatedUsers,
		TotalTemplates:   counts.TotalTemplates,
		UserGrowth:       percentOf(counts.UsersSince, counts.TotalUsers),
		SurveyGrowth:     percentOf(counts.SurveysSince, counts.TotalSurveys),
		TemplateGrowth:   percentOf(counts.TemplatesSince, counts.TotalTemplates),
		UserCountByRole:  byRole,
	}, nil
}

func (u *UserService) user(ctx context.Context, id string) (domains.User, error) {
	user, err := u.provider.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.User{}, ErrUserNotFound
		}
		slog.Error("load user failed", "err", err, "user_id", id)
		return domains.User{}, err
	}
	return user, nil
}

func percentOf(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
