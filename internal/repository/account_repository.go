package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopfront/api/internal/models"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrStaleRefreshHash = errors.New("refresh hash changed concurrently")
)

const accountColumns = `id, email, password_hash, refresh_token_hash, role, display_name, avatar_url, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, account models.Account) error {
	const query = `
		INSERT INTO accounts (
			id, email, password_hash, refresh_token_hash, role, display_name, avatar_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.RefreshTokenHash,
		account.Role,
		account.DisplayName,
		account.AvatarURL,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// SetRefreshHash is the replace-on-write path used by login, OAuth
// validation, and logout. A nil hash clears the active session.
func (r *AccountRepository) SetRefreshHash(ctx context.Context, accountID string, hash []byte) error {
	const query = `
		UPDATE accounts SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, accountID, hash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// SwapRefreshHash rotates the stored hash only if it still holds the value
// the caller verified against. Two refreshes racing on the same account
// resolve at the row level: exactly one update lands, the loser sees
// ErrStaleRefreshHash.
func (r *AccountRepository) SwapRefreshHash(ctx context.Context, accountID string, oldHash, newHash []byte) error {
	const query = `
		UPDATE accounts
		SET refresh_token_hash = $3, updated_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2
	`
	cmd, err := r.pool.Exec(ctx, query, accountID, oldHash, newHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleRefreshHash
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]models.Account, error) {
	const query = `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		account, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *AccountRepository) scanOne(row pgx.Row) (models.Account, error) {
	var account models.Account
	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.RefreshTokenHash,
		&account.Role,
		&account.DisplayName,
		&account.AvatarURL,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}
	return account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
