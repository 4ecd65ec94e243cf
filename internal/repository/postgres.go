package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/firstrun/firstrun-gate/internal/domain"
)

// Compile-time interface assertions.
var _ UserRepository = (*PostgresUserRepo)(nil)

// PostgresUserRepo implements UserRepository on pgx.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

const selectUserByIDSQL = `SELECT id, email, name, password_hash, avatar_url, has_onboarded, created_at, updated_at
FROM users WHERE id = $1`

func (r *PostgresUserRepo) GetByID(ctx context.Context, userID string) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserByIDSQL, userID))
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

const selectUserByEmailSQL = `SELECT id, email, name, password_hash, avatar_url, has_onboarded, created_at, updated_at
FROM users WHERE email = $1`

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, selectUserByEmailSQL, email))
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

const insertUserSQL = `INSERT INTO users (id, email, name, password_hash, avatar_url, has_onboarded)
VALUES ($1, $2, $3, $4, $5, false)
RETURNING id, email, name, password_hash, avatar_url, has_onboarded, created_at, updated_at`

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	inserted, err := scanUser(r.db.QueryRow(ctx, insertUserSQL,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.AvatarURL,
	))
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return inserted, nil
}

const markOnboardedSQL = `UPDATE users SET has_onboarded = true, updated_at = NOW() WHERE id = $1`

func (r *PostgresUserRepo) MarkOnboarded(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, markOnboardedSQL, userID); err != nil {
		return fmt.Errorf("mark onboarded: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.HasOnboarded,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
