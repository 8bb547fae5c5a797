package domains

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	default:
		return false
	}
}

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Password  string    `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	AccountActivate   = "ACTIVATE"
	AccountDeactivate = "DEACTIVATE"
)

// UserUpdate carries profile changes. Blank fields keep the stored value.
type UserUpdate struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type PasswordUpdate struct {
	Password string `json:"password"`
}

type UserRegistration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Principal is the authenticated caller, passed explicitly into services.
type Principal struct {
	UserID   string
	Username string
	Email    string
	Role     Role
}

func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// DashboardCounts are the raw totals behind the admin dashboard. The *Since fields
// count rows created at or after the window start.
type DashboardCounts struct {
	TotalSurveys     int64
	SurveysSince     int64
	TotalTemplates   int64
	TemplatesSince   int64
	TotalUsers       int64
	UsersSince       int64
	DeactivatedUsers int64
	UsersByRole      map[Role]int64
}

type Dashboard struct {
	TotalSurveys     int64            `json:"totalSurveys"`
	TotalUsers       int64            `json:"totalUsers"`
	DeactivatedUsers int64            `json:"deactivatedUsers"`
	TotalTemplates   int64            `json:"totalTemplates"`
	UserGrowth       float64          `json:"userGrowth"`
	SurveyGrowth     float64          `json:"surveyGrowth"`
	TemplateGrowth   float64          `json:"templateGrowth"`
	UserCountByRole  map[string]int64 `json:"userCountByRole"`
}
