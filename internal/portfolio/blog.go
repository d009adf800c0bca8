// Package portfolio implements the blog and contact workflows on top of the store.
package portfolio

import (
	"context"
	"time"

	"folio/internal/errors"
	"folio/internal/store"
	"folio/internal/types"

	"github.com/google/uuid"
)

// BlogService validates blog requests and applies them to the store
type BlogService struct {
	store  store.BlogStore
	now    func() time.Time
	logger *errors.Logger
}

func NewBlogService(s store.BlogStore, logger *errors.Logger) *BlogService {
	return &BlogService{store: s, now: func() time.Time { return time.Now().UTC() }, logger: logger}
}

// List returns posts for status; an empty status means published
func (b *BlogService) List(ctx context.Context, status string) ([]types.BlogPost, error) {
	switch status {
	case "":
		status = types.BlogStatusPublished
	case types.BlogStatusPublished, types.BlogStatusDraft, types.BlogStatusAll:
	default:
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"validation error: status must be one of [published draft all]", nil)
	}
	return b.store.List(ctx, status)
}

func (b *BlogService) Get(ctx context.Context, slug string) (types.BlogPost, error) {
	return b.store.FindBySlug(ctx, slug)
}

func (b *BlogService) Create(ctx context.Context, in types.BlogPostCreate) (types.BlogPost, error) {
	if err := types.Validate(in); err != nil {
		return types.BlogPost{}, err
	}
	post := types.NewBlogPost(uuid.NewString(), in, b.now())
	if err := b.store.Insert(ctx, post); err != nil {
		return types.BlogPost{}, err
	}
	b.logger.Info("Blog post created", "id", post.ID, "slug", post.Slug)
	return post, nil
}

// Update applies the non-nil fields of in to the post with id
func (b *BlogService) Update(ctx context.Context, id string, in types.BlogPostUpdate) (types.BlogPost, error) {
	if err := types.Validate(in); err != nil {
		return types.BlogPost{}, err
	}
	post, err := b.store.FindByID(ctx, id)
	if err != nil {
		return types.BlogPost{}, err
	}
	in.Apply(&post, b.now())
	if err := b.store.Update(ctx, post); err != nil {
		return types.BlogPost{}, err
	}
	b.logger.Info("Blog post updated", "id", post.ID, "slug", post.Slug)
	return post, nil
}

func (b *BlogService) Delete(ctx context.Context, id string) error {
	if err := b.store.Delete(ctx, id); err != nil {
		return err
	}
	b.logger.Info("Blog post deleted", "id", id)
	return nil
}
