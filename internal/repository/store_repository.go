package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopfront/api/internal/models"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrDuplicateSlug = errors.New("store slug already taken")
)

type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

func (r *StoreRepository) Create(ctx context.Context, store models.Store) error {
	const query = `
		INSERT INTO stores (
			id, owner_id, name, slug, description, logo_url, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		store.ID,
		store.OwnerID,
		store.Name,
		store.Slug,
		store.Description,
		store.LogoURL,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (r *StoreRepository) GetByID(ctx context.Context, id string) (models.Store, error) {
	const query = `
		SELECT id, owner_id, name, slug, description, logo_url, created_at, updated_at
		FROM stores WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	var store models.Store
	if err := row.Scan(
		&store.ID,
		&store.OwnerID,
		&store.Name,
		&store.Slug,
		&store.Description,
		&store.LogoURL,
		&store.CreatedAt,
		&store.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Store{}, ErrStoreNotFound
		}
		return models.Store{}, err
	}
	return store, nil
}

func (r *StoreRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error) {
	const query = `
		SELECT id, owner_id, name, slug, description, logo_url, created_at, updated_at
		FROM stores
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		var store models.Store
		if err := rows.Scan(
			&store.ID,
			&store.OwnerID,
			&store.Name,
			&store.Slug,
			&store.Description,
			&store.LogoURL,
			&store.CreatedAt,
			&store.UpdatedAt,
		); err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

func (r *StoreRepository) Update(ctx context.Context, store models.Store) error {
	const query = `
		UPDATE stores
		SET name = $2, description = $3, logo_url = $4, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, store.ID, store.Name, store.Description, store.LogoURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM stores WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}
