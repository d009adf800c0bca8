package types

import "time"

// Blog post statuses
const (
	BlogStatusDraft     = "draft"
	BlogStatusPublished = "published"
	// BlogStatusAll is only valid as a list filter
	BlogStatusAll = "all"
)

// DefaultBlogAuthor is used when a post is created without an author
const DefaultBlogAuthor = "Jaipal Singh"

// BlogPost is a stored blog article
type BlogPost struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	Author        string    `json:"author"`
	PublishedDate time.Time `json:"published_date"`
	ReadTime      string    `json:"read_time"`
	Tags          []string  `json:"tags"`
	Thumbnail     *string   `json:"thumbnail"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BlogPostCreate is the payload accepted when creating a post
type BlogPostCreate struct {
	Title         string     `json:"title" validate:"required,min=1,max=200"`
	Slug          string     `json:"slug" validate:"required,min=1,max=200"`
	Content       string     `json:"content" validate:"required,min=100"`
	Excerpt       string     `json:"excerpt" validate:"max=500"`
	Author        string     `json:"author" validate:"max=100"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	ReadTime      string     `json:"read_time" validate:"max=20"`
	Tags          []string   `json:"tags"`
	Thumbnail     *string    `json:"thumbnail"`
	Status        string     `json:"status" validate:"omitempty,oneof=draft published"`
}

// BlogPostUpdate carries the fields to change; nil fields are left untouched
type BlogPostUpdate struct {
	Title     *string   `json:"title" validate:"omitnil,min=1,max=200"`
	Slug      *string   `json:"slug" validate:"omitnil,min=1,max=200"`
	Content   *string   `json:"content" validate:"omitnil,min=100"`
	Excerpt   *string   `json:"excerpt" validate:"omitnil,max=500"`
	Author    *string   `json:"author" validate:"omitnil,max=100"`
	ReadTime  *string   `json:"read_time" validate:"omitnil,max=20"`
	Tags      *[]string `json:"tags"`
	Thumbnail *string   `json:"thumbnail"`
	Status    *string   `json:"status" validate:"omitnil,oneof=draft published"`
}

// NewBlogPost builds a post from a create payload, filling defaults
func NewBlogPost(id string, in BlogPostCreate, now time.Time) BlogPost {
	post := BlogPost{
		ID:            id,
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		Author:        in.Author,
		PublishedDate: now,
		ReadTime:      in.ReadTime,
		Tags:          in.Tags,
		Thumbnail:     in.Thumbnail,
		Status:        in.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if post.Author == "" {
		post.Author = DefaultBlogAuthor
	}
	if post.Status == "" {
		post.Status = BlogStatusPublished
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if in.PublishedDate != nil {
		post.PublishedDate = in.PublishedDate.UTC()
	}
	return post
}

// Apply merges the non-nil update fields into post and bumps UpdatedAt
func (u BlogPostUpdate) Apply(post *BlogPost, now time.Time) {
	if u.Title != nil {
		post.Title = *u.Title
	}
	if u.Slug != nil {
		post.Slug = *u.Slug
	}
	if u.Content != nil {
		post.Content = *u.Content
	}
	if u.Excerpt != nil {
		post.Excerpt = *u.Excerpt
	}
	if u.Author != nil {
		post.Author = *u.Author
	}
	if u.ReadTime != nil {
		post.ReadTime = *u.ReadTime
	}
	if u.Tags != nil {
		post.Tags = *u.Tags
	}
	if u.Thumbnail != nil {
		post.Thumbnail = u.Thumbnail
	}
	if u.Status != nil {
		post.Status = *u.Status
	}
	post.UpdatedAt = now
}

// IsEmpty reports whether the update would change nothing
func (u BlogPostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Slug == nil && u.Content == nil && u.Excerpt == nil &&
		u.Author == nil && u.ReadTime == nil && u.Tags == nil && u.Thumbnail == nil && u.Status == nil
}

// BlogResponse wraps blog mutations
type BlogResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Blog    *BlogPost `json:"blog,omitempty"`
}
