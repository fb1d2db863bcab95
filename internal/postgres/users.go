package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"calendar-service/internal/event"
	"calendar-service/internal/user"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	q := `SELECT id, name, role, cities FROM users WHERE id=$1`
	var u user.User
	var role string
	err := r.DB.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &role, &u.Cities)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, event.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrTransient, err)
	}
	parsed, ok := user.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: user %s has unknown role %q", event.ErrValidation, id, role)
	}
	u.Role = parsed
	return &u, nil
}
