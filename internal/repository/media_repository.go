package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopfront/api/internal/models"
)

var ErrMediaNotFound = errors.New("media asset not found")

type MediaRepository struct {
	pool *pgxpool.Pool
}

func NewMediaRepository(pool *pgxpool.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

func (r *MediaRepository) Create(ctx context.Context, asset models.MediaAsset) error {
	const query = `
		INSERT INTO media_assets (
			id, owner_id, store_id, bucket, object_key, format, size_bytes, checksum, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`
	_, err := r.pool.Exec(ctx, query,
		asset.ID,
		asset.OwnerID,
		asset.StoreID,
		asset.Bucket,
		asset.ObjectKey,
		asset.Format,
		asset.SizeBytes,
		asset.Checksum,
		asset.Status,
	)
	return err
}

func (r *MediaRepository) GetByID(ctx context.Context, id string) (models.MediaAsset, error) {
	const query = `
		SELECT id, owner_id, store_id, bucket, object_key, format, size_bytes, checksum, status, created_at, updated_at
		FROM media_assets WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	var asset models.MediaAsset
	if err := row.Scan(
		&asset.ID,
		&asset.OwnerID,
		&asset.StoreID,
		&asset.Bucket,
		&asset.ObjectKey,
		&asset.Format,
		&asset.SizeBytes,
		&asset.Checksum,
		&asset.Status,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MediaAsset{}, ErrMediaNotFound
		}
		return models.MediaAsset{}, err
	}
	return asset, nil
}

func (r *MediaRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.MediaAsset, error) {
	const query = `
		SELECT id, owner_id, store_id, bucket, object_key, format, size_bytes, checksum, status, created_at, updated_at
		FROM media_assets
		WHERE owner_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.MediaAsset
	for rows.Next() {
		var asset models.MediaAsset
		if err := rows.Scan(
			&asset.ID,
			&asset.OwnerID,
			&asset.StoreID,
			&asset.Bucket,
			&asset.ObjectKey,
			&asset.Format,
			&asset.SizeBytes,
			&asset.Checksum,
			&asset.Status,
			&asset.CreatedAt,
			&asset.UpdatedAt,
		); err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func (r *MediaRepository) MarkDeleted(ctx context.Context, id string) error {
	const query = `
		UPDATE media_assets SET status = 'deleted', updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrMediaNotFound
	}
	return nil
}
