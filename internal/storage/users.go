package storage

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"velocity/internal/model"
)

const userColumns = `id, email, full_name, role, password_hash, created_at`

func scanUser(s RowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// UserByEmail matches the email case-insensitively.
func (s *Storage) UserByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

func (s *Storage) UserByID(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return model.User{}, translate(err)
	}
	return u, nil
}

// CreateUser stores a user whose password is already hashed.
func (s *Storage) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	created, err := scanUser(s.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, full_name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		strings.TrimSpace(u.Email), u.FullName, u.Role, u.PasswordHash,
	))
	if err != nil {
		return model.User{}, translate(err)
	}
	s.log.Info("User created", zap.Int64("user_id", created.ID), zap.String("role", created.Role))
	return created, nil
}
