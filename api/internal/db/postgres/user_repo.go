package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/irgordon/keyward/api/internal/core/domain"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, nickname, password_hash, role, is_active,
	ai_model, api_key, api_base_url, max_tokens, temperature, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts the account and fills in the generated id and timestamps.
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, nickname, password_hash, role, is_active,
		                   ai_model, api_key, api_base_url, max_tokens, temperature)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.Username, user.Email, user.Nickname, user.PasswordHash, user.Role, user.IsActive,
		user.AIModel, user.APIKey, user.APIBaseURL, user.MaxTokens, user.Temperature,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapWriteError("create user", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByLogin matches the username exactly or the email case-insensitively.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2 LIMIT 1`
	return scanUser(r.pool.QueryRow(ctx, query, login, strings.ToLower(login)))
}

func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (r *UserRepo) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// Update writes every mutable column in one statement.
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, nickname = $3, password_hash = $4, role = $5, is_active = $6,
		    ai_model = $7, api_key = $8, api_base_url = $9, max_tokens = $10, temperature = $11,
		    updated_at = $12
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Nickname, user.PasswordHash, user.Role, user.IsActive,
		user.AIModel, user.APIKey, user.APIBaseURL, user.MaxTokens, user.Temperature,
		user.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Nickname, &user.PasswordHash, &user.Role, &user.IsActive,
		&user.AIModel, &user.APIKey, &user.APIBaseURL, &user.MaxTokens, &user.Temperature,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// 🛡️ Unique violations surface as ErrConflict so a race between the
// existence check and the insert still reads as a duplicate, not a 500.
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
