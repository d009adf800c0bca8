package store

import (
	"context"
	stderrors "errors"

	"folio/internal/config"
	"folio/internal/errors"
	"folio/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const blogColumns = `id, title, slug, content, excerpt, author, published_date, read_time, tags, thumbnail, status, created_at, updated_at`

// Postgres stores posts and submissions in PostgreSQL through a pgx pool
type Postgres struct {
	pool   *pgxpool.Pool
	logger *errors.Logger
}

// NewPostgres connects a pool and verifies it with a ping
func NewPostgres(ctx context.Context, cfg config.StoreConfig, logger *errors.Logger) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid store url", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, storeFailed("connect to database", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeFailed("ping database", err)
	}

	logger.Info("Connected to PostgreSQL store",
		"host", poolConfig.ConnConfig.Host,
		"database", poolConfig.ConnConfig.Database,
		"max_conns", poolConfig.MaxConns)

	return &Postgres{pool: pool, logger: logger}, nil
}

func (p *Postgres) Driver() string { return DriverPostgres }

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *Postgres) FindBySlug(ctx context.Context, slug string) (types.BlogPost, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE slug = $1`, slug)
	return p.scanOne(row, "find blog post by slug")
}

func (p *Postgres) FindByID(ctx context.Context, id string) (types.BlogPost, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE id = $1`, id)
	return p.scanOne(row, "find blog post")
}

func (p *Postgres) Insert(ctx context.Context, post types.BlogPost) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO blog_posts (`+blogColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		post.ID, post.Title, post.Slug, post.Content, post.Excerpt, post.Author, post.PublishedDate,
		post.ReadTime, tagsOrEmpty(post.Tags), post.Thumbnail, post.Status, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateSlug(post.Slug)
		}
		return storeFailed("insert blog post", err)
	}
	return nil
}

func (p *Postgres) Update(ctx context.Context, post types.BlogPost) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE blog_posts
		 SET title = $2, slug = $3, content = $4, excerpt = $5, author = $6, published_date = $7,
		     read_time = $8, tags = $9, thumbnail = $10, status = $11, updated_at = $12
		 WHERE id = $1`,
		post.ID, post.Title, post.Slug, post.Content, post.Excerpt, post.Author, post.PublishedDate,
		post.ReadTime, tagsOrEmpty(post.Tags), post.Thumbnail, post.Status, post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return duplicateSlug(post.Slug)
		}
		return storeFailed("update blog post", err)
	}
	if tag.RowsAffected() == 0 {
		return blogNotFound()
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return storeFailed("delete blog post", err)
	}
	if tag.RowsAffected() == 0 {
		return blogNotFound()
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, status string) ([]types.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts`
	var args []any
	if status != types.BlogStatusAll {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY published_date DESC, id`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storeFailed("list blog posts", err)
	}
	defer rows.Close()

	posts := []types.BlogPost{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, storeFailed("scan blog post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailed("list blog posts", err)
	}
	return posts, nil
}

func (p *Postgres) InsertContact(ctx context.Context, s types.ContactSubmission) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO contact_submissions (id, name, email, message, submitted_at, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.Name, s.Email, s.Message, s.SubmittedAt, s.Status,
	)
	if err != nil {
		return storeFailed("insert contact submission", err)
	}
	return nil
}

func (p *Postgres) UpdateContactStatus(ctx context.Context, id, status string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE contact_submissions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return storeFailed("update contact status", err)
	}
	if tag.RowsAffected() == 0 {
		return contactNotFound()
	}
	return nil
}

func (p *Postgres) ListContacts(ctx context.Context) ([]types.ContactSubmission, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, name, email, message, submitted_at, status
		 FROM contact_submissions ORDER BY submitted_at DESC, id`)
	if err != nil {
		return nil, storeFailed("list contact submissions", err)
	}
	defer rows.Close()

	submissions := []types.ContactSubmission{}
	for rows.Next() {
		var s types.ContactSubmission
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Message, &s.SubmittedAt, &s.Status); err != nil {
			return nil, storeFailed("scan contact submission", err)
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailed("list contact submissions", err)
	}
	return submissions, nil
}

func (p *Postgres) scanOne(row pgx.Row, op string) (types.BlogPost, error) {
	post, err := scanPost(row)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return types.BlogPost{}, blogNotFound()
		}
		return types.BlogPost{}, storeFailed(op, err)
	}
	return post, nil
}

func scanPost(row pgx.Row) (types.BlogPost, error) {
	var post types.BlogPost
	err := row.Scan(&post.ID, &post.Title, &post.Slug, &post.Content, &post.Excerpt, &post.Author,
		&post.PublishedDate, &post.ReadTime, &post.Tags, &post.Thumbnail, &post.Status,
		&post.CreatedAt, &post.UpdatedAt)
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return post, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
