package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"time"

	"github.com/rs/zerolog"

	"shopfront/api/internal/config"
	"shopfront/api/internal/ids"
	"shopfront/api/internal/media/sniffer"
	"shopfront/api/internal/models"
	"shopfront/api/internal/repository"
	"shopfront/api/internal/security"
	"shopfront/api/internal/storage"
)

const maxUploadBytes = 10 << 20 // 10 MiB

var (
	ErrEmptyUpload       = errors.New("empty file")
	ErrUploadTooLarge    = errors.New("file exceeds upload limit")
	ErrTypeMismatch      = errors.New("declared content type does not match payload")
	ErrUnsupportedUpload = errors.New("unsupported image type")
)

// MediaService relays store/product imagery to the external media host and
// records an asset row per object.
type MediaService struct {
	assets *repository.MediaRepository
	store  *storage.ObjectStore
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewMediaService(assets *repository.MediaRepository, store *storage.ObjectStore, cfg *config.AppConfig, log zerolog.Logger) *MediaService {
	return &MediaService{
		assets: assets,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
}

type UploadInput struct {
	Owner   models.Account
	StoreID *string
	File    multipart.File
	Header  *multipart.FileHeader
}

type UploadResult struct {
	Asset models.MediaAsset
	URL   string
}

func (s *MediaService) Upload(ctx context.Context, input UploadInput) (UploadResult, error) {
	if input.File == nil || input.Header == nil {
		return UploadResult{}, ErrEmptyUpload
	}
	if input.Header.Size > maxUploadBytes {
		return UploadResult{}, ErrUploadTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, maxUploadBytes+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return UploadResult{}, ErrEmptyUpload
	}
	if len(data) > maxUploadBytes {
		return UploadResult{}, ErrUploadTooLarge
	}

	detected, err := sniffer.DetectHead(data)
	if err != nil {
		return UploadResult{}, ErrUnsupportedUpload
	}

	declared := sniffer.MimeTypeFromHeader(input.Header.Header)
	if declared != "" && declared != detected.MIME {
		return UploadResult{}, ErrTypeMismatch
	}

	checksum := sha256.Sum256(data)
	assetID := ids.New()
	objectKey := path.Join("media", input.Owner.ID, assetID+"."+string(detected.Type))

	if err := s.store.Put(ctx, objectKey, bytes.NewReader(data), int64(len(data)), detected.MIME); err != nil {
		return UploadResult{}, fmt.Errorf("relay object: %w", err)
	}

	asset := models.MediaAsset{
		ID:        assetID,
		OwnerID:   input.Owner.ID,
		StoreID:   input.StoreID,
		Bucket:    s.store.Bucket(),
		ObjectKey: objectKey,
		Format:    string(detected.Type),
		SizeBytes: int64(len(data)),
		Checksum:  hex.EncodeToString(checksum[:]),
		Status:    models.MediaStatusActive,
	}

	if err := s.assets.Create(ctx, asset); err != nil {
		// Best effort: don't leave an orphan object behind the row failure.
		if rmErr := s.store.Remove(ctx, objectKey); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("object_key", objectKey).Msg("orphan object cleanup failed")
		}
		return UploadResult{}, fmt.Errorf("persist asset: %w", err)
	}

	return UploadResult{
		Asset: asset,
		URL:   s.DeliveryURL(asset),
	}, nil
}

// DeliveryURL builds an expiring signed URL for the asset.
func (s *MediaService) DeliveryURL(asset models.MediaAsset) string {
	expiresAt := time.Now().Add(s.cfg.Storage.SignedURLTTL)
	sig := security.SignResourceURL(s.cfg.Storage.URLSecret, asset.ObjectKey, expiresAt)
	return fmt.Sprintf("%s/%s?exp=%d&sig=%s", s.cfg.Storage.PublicBase, asset.ObjectKey, expiresAt.Unix(), sig)
}
