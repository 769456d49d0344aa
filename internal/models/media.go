package models

import "time"

type MediaStatus string

const (
	MediaStatusActive  MediaStatus = "active"
	MediaStatusDeleted MediaStatus = "deleted"
)

// MediaAsset is a row for an object relayed to the external media host.
type MediaAsset struct {
	ID        string
	OwnerID   string
	StoreID   *string
	Bucket    string
	ObjectKey string
	Format    string
	SizeBytes int64
	Checksum  string
	Status    MediaStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
