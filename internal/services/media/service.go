package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/kenogenyi/zikistorez/internal/domain/model"
	pgrepo "github.com/kenogenyi/zikistorez/internal/repo/postgres"
	"github.com/kenogenyi/zikistorez/internal/services/access"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrForbidden     = errors.New("forbidden")
	ErrMediaNotFound = errors.New("media not found")
	ErrFileNotFound  = errors.New("product file not found")
)

const signedURLTTL = 5 * time.Minute

type MediaStore interface {
	Create(ctx context.Context, userID int64, objectKey, fileName, contentType string, sizeBytes int64) (model.Media, error)
	FindByID(ctx context.Context, mediaID int64) (model.Media, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Media, error)
}

type ProductFileStore interface {
	Create(ctx context.Context, userID int64, objectKey, fileName string, sizeBytes int64) (model.ProductFile, error)
	FindByID(ctx context.Context, fileID int64) (model.ProductFile, error)
}

type ProductStore interface {
	FindByID(ctx context.Context, productID int64, scope pgrepo.ProductScope) (model.Product, error)
}

type PurchaseChecker interface {
	HasPaidOrderWithProduct(ctx context.Context, userID, productID int64) (bool, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	media     MediaStore
	files     ProductFileStore
	products  ProductStore
	purchases PurchaseChecker
	storage   ObjectStorage
}

type Dependencies struct {
	Media     MediaStore
	Files     ProductFileStore
	Products  ProductStore
	Purchases PurchaseChecker
	Storage   ObjectStorage
}

func NewService(deps Dependencies) *Service {
	return &Service{
		media:     deps.Media,
		files:     deps.Files,
		products:  deps.Products,
		purchases: deps.Purchases,
		storage:   deps.Storage,
	}
}

type Asset struct {
	ID        int64
	FileName  string
	URL       string
	CreatedAt time.Time
}

func (s *Service) UploadImage(ctx context.Context, caller access.Caller, fileName, contentType string, body io.Reader, size int64) (Asset, error) {
	if !access.MediaCreate(caller).Allowed() {
		return Asset{}, ErrForbidden
	}
	if body == nil || size <= 0 {
		return Asset{}, ErrValidation
	}
	if s.media == nil || s.storage == nil {
		return Asset{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Asset{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildObjectKey(caller.UserID, "images", fileName)
	if err != nil {
		return Asset{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return Asset{}, fmt.Errorf("put object: %w", err)
	}

	record, err := s.media.Create(ctx, caller.UserID, objectKey, path.Base(fileName), contentType, size)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Asset{}, fmt.Errorf("create media record: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return Asset{}, fmt.Errorf("presign media url: %w", err)
	}

	return Asset{ID: record.ID, FileName: record.FileName, URL: url, CreatedAt: record.CreatedAt}, nil
}

func (s *Service) ImageURL(ctx context.Context, caller access.Caller, mediaID int64) (Asset, error) {
	decision := access.MediaRead(caller)
	if !decision.Allowed() {
		return Asset{}, ErrForbidden
	}
	if s.media == nil || s.storage == nil {
		return Asset{}, fmt.Errorf("media dependencies are not configured")
	}

	record, err := s.media.FindByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMediaNotFound) {
			return Asset{}, ErrMediaNotFound
		}
		return Asset{}, fmt.Errorf("find media: %w", err)
	}
	if decision.OwnerScope() && record.UserID != caller.UserID {
		return Asset{}, ErrMediaNotFound
	}

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return Asset{}, fmt.Errorf("presign media url: %w", err)
	}

	return Asset{ID: record.ID, FileName: record.FileName, URL: url, CreatedAt: record.CreatedAt}, nil
}

func (s *Service) ListMyImages(ctx context.Context, caller access.Caller) ([]Asset, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrForbidden
	}
	if s.media == nil || s.storage == nil {
		return nil, fmt.Errorf("media dependencies are not configured")
	}

	records, err := s.media.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list media records: %w", err)
	}

	assets := make([]Asset, 0, len(records))
	for _, record := range records {
		url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign media url: %w", err)
		}
		assets = append(assets, Asset{ID: record.ID, FileName: record.FileName, URL: url, CreatedAt: record.CreatedAt})
	}

	return assets, nil
}

func (s *Service) UploadProductFile(ctx context.Context, caller access.Caller, fileName string, body io.Reader, size int64) (Asset, error) {
	if !access.ProductFilesCreate(caller).Allowed() {
		return Asset{}, ErrForbidden
	}
	if body == nil || size <= 0 {
		return Asset{}, ErrValidation
	}
	if s.files == nil || s.storage == nil {
		return Asset{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Asset{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildObjectKey(caller.UserID, "files", fileName)
	if err != nil {
		return Asset{}, fmt.Errorf("build object key: %w", err)
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, "application/octet-stream"); err != nil {
		return Asset{}, fmt.Errorf("put object: %w", err)
	}

	record, err := s.files.Create(ctx, caller.UserID, objectKey, path.Base(fileName), size)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return Asset{}, fmt.Errorf("create product file record: %w", err)
	}

	return Asset{ID: record.ID, FileName: record.FileName, CreatedAt: record.CreatedAt}, nil
}

// ProductFileURL gates the download behind ownership: the seller, an admin,
// or a buyer with a paid order containing the product.
func (s *Service) ProductFileURL(ctx context.Context, caller access.Caller, productID int64) (Asset, error) {
	decision := access.ProductFilesRead(caller)
	if !decision.Allowed() {
		return Asset{}, ErrForbidden
	}
	if s.products == nil || s.files == nil || s.purchases == nil || s.storage == nil {
		return Asset{}, fmt.Errorf("media dependencies are not configured")
	}

	product, err := s.products.FindByID(ctx, productID, pgrepo.ProductScope{})
	if err != nil {
		if errors.Is(err, pgrepo.ErrProductNotFound) {
			return Asset{}, ErrFileNotFound
		}
		return Asset{}, fmt.Errorf("find product: %w", err)
	}
	if product.ProductFileID == nil {
		return Asset{}, ErrFileNotFound
	}

	allowed := !decision.OwnerScope() || product.UserID == caller.UserID
	if !allowed {
		paid, err := s.purchases.HasPaidOrderWithProduct(ctx, caller.UserID, productID)
		if err != nil {
			return Asset{}, fmt.Errorf("check paid order: %w", err)
		}
		allowed = paid
	}
	if !allowed {
		return Asset{}, ErrForbidden
	}

	record, err := s.files.FindByID(ctx, *product.ProductFileID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProductFileNotFound) {
			return Asset{}, ErrFileNotFound
		}
		return Asset{}, fmt.Errorf("find product file: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return Asset{}, fmt.Errorf("presign file url: %w", err)
	}

	return Asset{ID: record.ID, FileName: record.FileName, URL: url, CreatedAt: record.CreatedAt}, nil
}

func buildObjectKey(userID int64, kind, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("users/%d/%s/%s_%s%s", userID, kind, stamp, hex.EncodeToString(rnd), ext), nil
}
