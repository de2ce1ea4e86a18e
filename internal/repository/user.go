package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pawangupta079/skill-hire/internal/apperr"
	"github.com/pawangupta079/skill-hire/pkg/model"
)

const userColumns = `user_id, first_name, last_name, email, password_hash, user_type,
	profile, company, preferences, is_active, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.UserID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.UserType,
		&u.Profile, &u.Company, &u.Preferences, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (user_id, first_name, last_name, email, password_hash, user_type,
	profile, company, preferences, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := r.db.Exec(ctx, q,
		u.UserID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.UserType,
		u.Profile, u.Company, u.Preferences, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return apperr.Conflict("email already registered")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, notFound(err, "user", "scan user by id")
	}
	return u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	u, err := scanUser(r.db.QueryRow(ctx, q, email))
	if err != nil {
		return nil, notFound(err, "user", "scan user by email")
	}
	return u, nil
}

func (r *Repository) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT ` + userColumns + ` FROM users WHERE user_id = ANY($1)`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("query users by ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out[u.UserID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (r *Repository) UpdateUserProfile(ctx context.Context, u *model.User) error {
	const q = `
UPDATE users
SET first_name = $2, last_name = $3, profile = $4, company = $5, preferences = $6, updated_at = $7
WHERE user_id = $1
`
	tag, err := r.db.Exec(ctx, q, u.UserID, u.FirstName, u.LastName, u.Profile, u.Company, u.Preferences, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *Repository) SetUserActive(ctx context.Context, id string, active bool) (*model.User, error) {
	q := `UPDATE users SET is_active = $2, updated_at = now() WHERE user_id = $1 RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, q, id, active))
	if err != nil {
		return nil, notFound(err, "user", "update user status")
	}
	return u, nil
}

func (r *Repository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE users SET last_login = $2 WHERE user_id = $1`
	tag, err := r.db.Exec(ctx, q, id, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *Repository) ListUsers(ctx context.Context, f model.UserFilter) ([]model.User, int, error) {
	where := ` WHERE ($1 = '' OR user_type = $1)
	AND ($2 = '' OR first_name ILIKE '%' || $2 || '%' OR last_name ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')`
	args := []any{string(f.UserType), f.Search}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	limit, offset := pageArgs(f.Limit, f.Offset)
	q := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, q, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user row: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return out, total, nil
}
