// Package books implements the book catalog: CRUD over book records with a
// Redis read-through cache and optional cover image storage. Every route in
// this package sits behind the login guard.
package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bookstore/internal/storage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	bookCacheTTL     = 5 * time.Minute
	listCacheTTL     = 2 * time.Minute
	coverUploadTTL   = 15 * time.Minute
	coverDownloadTTL = time.Hour
)

var (
	// ErrMissingFields is returned when a creation request omits any of the
	// four required fields
	ErrMissingFields = errors.New("all fields are required")
	// ErrStorageUnavailable is returned for cover operations when no object
	// storage is configured
	ErrStorageUnavailable = errors.New("cover storage is not available")
)

// Service defines the book catalog interface
type Service interface {
	List(ctx context.Context) ([]Book, error)
	Create(ctx context.Context, title, author string, price float64, description string) (*Book, error)
	Get(ctx context.Context, id uuid.UUID) (*Book, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateBookInput) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CoverUploadURL(ctx context.Context, id uuid.UUID, contentType string) (*CoverUpload, error)
	CoverDownloadURL(ctx context.Context, book *Book) (string, error)
}

type service struct {
	repo   *Repository
	covers storage.Service
	cache  *redis.Client
}

// NewService creates the catalog service. covers may be nil when no object
// storage is configured; cover endpoints then fail with
// ErrStorageUnavailable. Caching is disabled when Redis is unreachable.
func NewService(repo *Repository, covers storage.Service, redisAddr, redisPassword string, redisDB int) Service {
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       redisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, book caching disabled", "error", err)
		rdb = nil
	}

	return &service{
		repo:   repo,
		covers: covers,
		cache:  rdb,
	}
}

// newServiceWithCache wires explicit dependencies; used by tests
func newServiceWithCache(repo *Repository, covers storage.Service, cache *redis.Client) Service {
	return &service{repo: repo, covers: covers, cache: cache}
}

// List returns every book in stored order
func (s *service) List(ctx context.Context) ([]Book, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, listCacheKey()).Result()
		if err == nil {
			var booksList []Book
			if err := json.Unmarshal([]byte(cached), &booksList); err == nil {
				return booksList, nil
			}
		}
	}

	booksList, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(booksList); err == nil {
			s.cache.Set(ctx, listCacheKey(), data, listCacheTTL)
		}
	}

	return booksList, nil
}

// Create validates that all four fields are present, then persists the book
func (s *service) Create(ctx context.Context, title, author string, price float64, description string) (*Book, error) {
	if title == "" || author == "" || price <= 0 || description == "" {
		return nil, ErrMissingFields
	}

	book, err := s.repo.Create(ctx, title, author, price, description)
	if err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return book, nil
}

// Get retrieves a book through the cache
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Book, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, bookCacheKey(id)).Result()
		if err == nil {
			var book Book
			if err := json.Unmarshal([]byte(cached), &book); err == nil {
				return &book, nil
			}
		}
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(book); err == nil {
			s.cache.Set(ctx, bookCacheKey(id), data, bookCacheTTL)
		}
	}

	return book, nil
}

// Update applies a partial update and invalidates caches
func (s *service) Update(ctx context.Context, id uuid.UUID, in UpdateBookInput) (*Book, error) {
	book, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, id)
	s.invalidateList(ctx)
	return book, nil
}

// Delete removes a book and invalidates caches. Absent identifiers are a
// no-op. An uploaded cover is removed from object storage best-effort.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var coverToDelete string
	if s.covers != nil {
		if book, err := s.repo.GetByID(ctx, id); err == nil && book.CoverKey != nil {
			coverToDelete = *book.CoverKey
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if coverToDelete != "" {
		if err := s.covers.DeleteObject(ctx, coverToDelete); err != nil {
			slog.Warn("Failed to delete cover object", "book_id", id, "key", coverToDelete, "error", err)
		}
	}

	s.invalidateBook(ctx, id)
	s.invalidateList(ctx)
	return nil
}

// CoverUploadURL verifies the book exists, records its cover key and
// returns a presigned upload URL.
func (s *service) CoverUploadURL(ctx context.Context, id uuid.UUID, contentType string) (*CoverUpload, error) {
	if s.covers == nil {
		return nil, ErrStorageUnavailable
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	key := coverKey(id)
	url, err := s.covers.PresignUpload(ctx, key, contentType, coverUploadTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to presign cover upload: %w", err)
	}

	if err := s.repo.SetCoverKey(ctx, id, key); err != nil {
		return nil, err
	}
	s.invalidateBook(ctx, id)
	s.invalidateList(ctx)

	return &CoverUpload{
		UploadURL: url,
		CoverKey:  key,
		ExpiresAt: time.Now().Add(coverUploadTTL).Unix(),
	}, nil
}

// CoverDownloadURL returns a presigned download URL for the book's cover,
// or an empty string when the book has none or storage is not configured.
func (s *service) CoverDownloadURL(ctx context.Context, book *Book) (string, error) {
	if s.covers == nil || book.CoverKey == nil || *book.CoverKey == "" {
		return "", nil
	}
	return s.covers.PresignDownload(ctx, *book.CoverKey, coverDownloadTTL)
}

func (s *service) invalidateBook(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.Del(ctx, bookCacheKey(id))
	}
}

func (s *service) invalidateList(ctx context.Context) {
	if s.cache != nil {
		s.cache.Del(ctx, listCacheKey())
	}
}

func bookCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("book:%s", id)
}

func listCacheKey() string {
	return "books:all"
}

func coverKey(id uuid.UUID) string {
	return fmt.Sprintf("covers/%s", id)
}
