package store

import (
	"context"
	"fmt"
)

// Migration is one idempotent schema step
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the schema in apply order
var Migrations = []Migration{
	{
		Name: "create_blog_posts",
		SQL: `CREATE TABLE IF NOT EXISTS blog_posts (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			slug           TEXT NOT NULL UNIQUE,
			content        TEXT NOT NULL,
			excerpt        TEXT NOT NULL DEFAULT '',
			author         TEXT NOT NULL,
			published_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			read_time      TEXT NOT NULL DEFAULT '',
			tags           TEXT[] NOT NULL DEFAULT '{}',
			thumbnail      TEXT,
			status         TEXT NOT NULL DEFAULT 'published',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "index_blog_posts_status_published",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_blog_posts_status_published ON blog_posts (status, published_date DESC)`,
	},
	{
		Name: "create_contact_submissions",
		SQL: `CREATE TABLE IF NOT EXISTS contact_submissions (
			id           TEXT PRIMARY KEY,
			name         TEXT NOT NULL,
			email        TEXT NOT NULL,
			message      TEXT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status       TEXT NOT NULL DEFAULT 'pending'
		)`,
	},
	{
		Name: "index_contact_submissions_submitted",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_contact_submissions_submitted ON contact_submissions (submitted_at DESC)`,
	},
}

// Migrate applies every migration in order, stopping at the first failure
func (p *Postgres) Migrate(ctx context.Context) error {
	p.logger.Info("Starting database migrations", "count", len(Migrations))

	for _, m := range Migrations {
		if _, err := p.pool.Exec(ctx, m.SQL); err != nil {
			p.logger.LogError(err, "Migration failed", "name", m.Name)
			return storeFailed(fmt.Sprintf("apply migration %s", m.Name), err)
		}
		p.logger.Debug("Migration completed", "name", m.Name)
	}

	p.logger.Info("All migrations completed successfully")
	return nil
}
