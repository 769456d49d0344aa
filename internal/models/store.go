package models

import "time"

type Store struct {
	ID          string
	OwnerID     string
	Name        string
	Slug        string
	Description string
	LogoURL     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Product struct {
	ID          string
	StoreID     string
	Name        string
	Description string
	SKU         string
	PriceCents  int64
	Currency    string
	ImageURL    *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
