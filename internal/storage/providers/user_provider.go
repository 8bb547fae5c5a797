package providers

import (
	"context"
	"errors"
	"fmt"

	"surveysphere/internal/domains"
	"surveysphere/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type UserProvider struct {
	db DB
}

func NewUserProvider(db DB) *UserProvider {
	return &UserProvider{
		db: db,
	}
}

const userColumns = `id, username, email, role, passhash, active, created_at`

func scanUser(row pgx.Row) (domains.User, error) {
	var (
		u    domains.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &role, &u.Password, &u.Active, &u.CreatedAt); err != nil {
		return domains.User{}, err
	}
	parsed, err := domains.ParseRole(role)
	if err != nil {
		return domains.User{}, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Role = parsed
	return u, nil
}

func (p *UserProvider) SaveUser(ctx context.Context, passHash string, user domains.User) error {
	_, err := p.db.Exec(ctx, `
          INSERT INTO accounts (id, username, email, role, passhash, active, created_at)
          VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
		user.ID, user.Username, user.Email, string(user.Role), passHash, user.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserExist
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (p *UserProvider) getUser(ctx context.Context, where string, arg any) (domains.User, error) {
	user, err := scanUser(p.db.QueryRow(ctx, `SELECT `+userColumns+` FROM accounts WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.User{}, storage.ErrNotFound
		}
		return domains.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func (p *UserProvider) GetUserByEmail(ctx context.Context, email string) (domains.User, error) {
	return p.getUser(ctx, `lower(email) = lower($1)`, email)
}

func (p *UserProvider) GetUserByID(ctx context.Context, id string) (domains.User, error) {
	return p.getUser(ctx, `id = $1`, id)
}

func (p *UserProvider) ListUsers(ctx context.Context) ([]domains.User, error) {
	rows, err := p.db.Query(ctx, `SELECT `+userColumns+` FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := make([]domains.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (p *UserProvider) UpdateUserProfile(ctx context.Context, id, username, email string) error {
	tag, err := p.db.Exec(ctx, `
          UPDATE accounts SET username = $2, email = $3, updated_at = now()
          WHERE id = $1`, id, username, email)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserExist
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *UserProvider) UpdatePassword(ctx context.Context, id, passHash string) error {
	return p.updateAccount(ctx, `passhash = $2`, id, passHash)
}

func (p *UserProvider) SetUserActive(ctx context.Context, id string, active bool) error {
	return p.updateAccount(ctx, `active = $2`, id, active)
}

func (p *UserProvider) updateAccount(ctx context.Context, set, id string, value any) error {
	tag, err := p.db.Exec(ctx, `UPDATE accounts SET `+set+`, updated_at = now() WHERE id = $1`, id, value)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
