package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopfront/api/internal/models"
)

var ErrContactNotFound = errors.New("contact not found")

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

func (r *ContactRepository) Create(ctx context.Context, contact models.Contact) error {
	const query = `
		INSERT INTO contacts (id, account_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.AccountID,
		contact.Name,
		contact.Email,
		contact.Phone,
	)
	return err
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (models.Contact, error) {
	const query = `
		SELECT id, account_id, name, email, phone, created_at, updated_at
		FROM contacts WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	var contact models.Contact
	if err := row.Scan(
		&contact.ID,
		&contact.AccountID,
		&contact.Name,
		&contact.Email,
		&contact.Phone,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Contact{}, ErrContactNotFound
		}
		return models.Contact{}, err
	}
	return contact, nil
}

func (r *ContactRepository) ListByAccount(ctx context.Context, accountID string) ([]models.Contact, error) {
	const query = `
		SELECT id, account_id, name, email, phone, created_at, updated_at
		FROM contacts
		WHERE account_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var contact models.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.AccountID,
			&contact.Name,
			&contact.Email,
			&contact.Phone,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) Update(ctx context.Context, contact models.Contact) error {
	const query = `
		UPDATE contacts SET name = $2, email = $3, phone = $4, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, contact.ID, contact.Name, contact.Email, contact.Phone)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM contacts WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}
