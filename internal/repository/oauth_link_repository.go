package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopfront/api/internal/models"
)

var ErrOAuthLinkNotFound = errors.New("oauth link not found")

type OAuthLinkRepository struct {
	pool *pgxpool.Pool
}

func NewOAuthLinkRepository(pool *pgxpool.Pool) *OAuthLinkRepository {
	return &OAuthLinkRepository{pool: pool}
}

func (r *OAuthLinkRepository) Find(ctx context.Context, provider string, providerAccountID string) (models.OAuthLink, error) {
	const query = `
		SELECT id, account_id, provider, provider_account_id, provider_refresh_token, created_at
		FROM oauth_links
		WHERE provider = $1 AND provider_account_id = $2
	`

	row := r.pool.QueryRow(ctx, query, provider, providerAccountID)
	var link models.OAuthLink
	if err := row.Scan(
		&link.ID,
		&link.AccountID,
		&link.Provider,
		&link.ProviderAccountID,
		&link.ProviderRefreshToken,
		&link.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.OAuthLink{}, ErrOAuthLinkNotFound
		}
		return models.OAuthLink{}, err
	}
	return link, nil
}

// CreateWithAccount inserts the account row and its provider link in a
// single transaction, so a repeated first sign-in can never leave an
// account without a link or a link without an account.
func (r *OAuthLinkRepository) CreateWithAccount(ctx context.Context, account models.Account, link models.OAuthLink) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const accountQuery = `
		INSERT INTO accounts (
			id, email, password_hash, refresh_token_hash, role, display_name, avatar_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`
	if _, err := tx.Exec(ctx, accountQuery,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.RefreshTokenHash,
		account.Role,
		account.DisplayName,
		account.AvatarURL,
	); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	const linkQuery = `
		INSERT INTO oauth_links (
			id, account_id, provider, provider_account_id, provider_refresh_token, created_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW()
		)
	`
	if _, err := tx.Exec(ctx, linkQuery,
		link.ID,
		link.AccountID,
		link.Provider,
		link.ProviderAccountID,
		link.ProviderRefreshToken,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
