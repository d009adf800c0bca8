// Package store persists blog posts and contact submissions.
package store

import (
	"context"
	"fmt"

	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/types"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// BlogStore persists blog posts keyed by id and unique slug
type BlogStore interface {
	FindBySlug(ctx context.Context, slug string) (types.BlogPost, error)
	FindByID(ctx context.Context, id string) (types.BlogPost, error)
	Insert(ctx context.Context, post types.BlogPost) error
	// Update replaces a stored post; the slug must stay unique
	Update(ctx context.Context, post types.BlogPost) error
	Delete(ctx context.Context, id string) error
	// List returns posts with the given status (or every post for "all"), newest published first
	List(ctx context.Context, status string) ([]types.BlogPost, error)
}

// ContactStore persists contact form submissions
type ContactStore interface {
	InsertContact(ctx context.Context, submission types.ContactSubmission) error
	UpdateContactStatus(ctx context.Context, id, status string) error
	// ListContacts returns submissions newest first
	ListContacts(ctx context.Context) ([]types.ContactSubmission, error)
}

// Store is a full backend
type Store interface {
	BlogStore
	ContactStore
	Driver() string
	Ping(ctx context.Context) error
	Close()
}

// Open returns the store selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig, logger *errors.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		logger.Info("Using in-memory store")
		return NewMemory(), nil
	case DriverPostgres:
		pg, err := NewPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.MigrateOnStart {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return pg, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, fmt.Sprintf("unsupported store driver: %s", cfg.Driver), nil)
	}
}

func blogNotFound() *errors.AppError {
	return errors.NewNotFoundError(errors.ErrCodeNotFound, "Blog post not found")
}

func contactNotFound() *errors.AppError {
	return errors.NewNotFoundError(errors.ErrCodeNotFound, "Contact submission not found")
}

func duplicateSlug(slug string) *errors.AppError {
	return errors.NewConflictError(errors.ErrCodeDuplicateSlug, "Blog post with this slug already exists").
		WithContext("slug", slug)
}

func storeFailed(op string, err error) *errors.AppError {
	return errors.NewIOError(errors.ErrCodeStoreFailed, fmt.Sprintf("failed to %s", op), err)
}

func matchesStatus(post types.BlogPost, status string) bool {
	return status == types.BlogStatusAll || post.Status == status
}
