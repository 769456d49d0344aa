package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopfront/api/internal/models"
)

var ErrAddressNotFound = errors.New("address not found")

const addressColumns = `id, account_id, line1, line2, city, region, postal_code, country, is_default, created_at, updated_at`

type AddressRepository struct {
	pool *pgxpool.Pool
}

func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

func (r *AddressRepository) Create(ctx context.Context, address models.Address) error {
	const query = `
		INSERT INTO addresses (
			id, account_id, line1, line2, city, region, postal_code, country, is_default, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		address.ID,
		address.AccountID,
		address.Line1,
		address.Line2,
		address.City,
		address.Region,
		address.PostalCode,
		address.Country,
		address.IsDefault,
	)
	return err
}

func (r *AddressRepository) GetByID(ctx context.Context, id string) (models.Address, error) {
	const query = `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *AddressRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Address, error) {
	const query = `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE account_id = $1
		ORDER BY is_default DESC, created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []models.Address
	for rows.Next() {
		address, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, address)
	}
	return addresses, rows.Err()
}

func (r *AddressRepository) Update(ctx context.Context, address models.Address) error {
	const query = `
		UPDATE addresses
		SET line1 = $2, line2 = $3, city = $4, region = $5, postal_code = $6, country = $7, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		address.ID,
		address.Line1,
		address.Line2,
		address.City,
		address.Region,
		address.PostalCode,
		address.Country,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// SetDefault marks the given address as the account's default and clears
// the flag on every other address of the account in the same transaction.
func (r *AddressRepository) SetDefault(ctx context.Context, accountID string, addressID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE account_id = $1 AND is_default`,
		accountID,
	); err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default = TRUE, updated_at = NOW() WHERE id = $1 AND account_id = $2`,
		addressID, accountID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAddressNotFound
	}

	return tx.Commit(ctx)
}

func (r *AddressRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM addresses WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (r *AddressRepository) scanOne(row pgx.Row) (models.Address, error) {
	var address models.Address
	if err := row.Scan(
		&address.ID,
		&address.AccountID,
		&address.Line1,
		&address.Line2,
		&address.City,
		&address.Region,
		&address.PostalCode,
		&address.Country,
		&address.IsDefault,
		&address.CreatedAt,
		&address.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Address{}, ErrAddressNotFound
		}
		return models.Address{}, err
	}
	return address, nil
}
