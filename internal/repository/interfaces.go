package repository

import (
	"context"

	"shopfront/api/internal/models"
)

// AccountStore is the persistence contract the auth service consumes.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	GetByID(ctx context.Context, id string) (models.Account, error)
	// SetRefreshHash replaces the stored refresh-token hash unconditionally;
	// nil clears it.
	SetRefreshHash(ctx context.Context, accountID string, hash []byte) error
	// SwapRefreshHash sets newHash only if the stored hash still equals
	// oldHash. Returns ErrStaleRefreshHash when a concurrent rotation won.
	SwapRefreshHash(ctx context.Context, accountID string, oldHash, newHash []byte) error
}

// OAuthLinkStore persists provider identity links.
type OAuthLinkStore interface {
	Find(ctx context.Context, provider string, providerAccountID string) (models.OAuthLink, error)
	// CreateWithAccount inserts the account and its link in one transaction.
	CreateWithAccount(ctx context.Context, account models.Account, link models.OAuthLink) error
}

// StoreStore persists merchant stores.
type StoreStore interface {
	Create(ctx context.Context, store models.Store) error
	GetByID(ctx context.Context, id string) (models.Store, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Store, error)
	Update(ctx context.Context, store models.Store) error
	Delete(ctx context.Context, id string) error
}

// ProductStore persists catalog products.
type ProductStore interface {
	Create(ctx context.Context, product models.Product) error
	GetByID(ctx context.Context, id string) (models.Product, error)
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]models.Product, error)
	Update(ctx context.Context, product models.Product) error
	Delete(ctx context.Context, id string) error
}
