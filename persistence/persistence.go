// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/log"
	"github.com/CrawX/go-imap-archiver/persistence/migrations"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

type Persistence struct {
	db *sqlx.DB
	l  *logrus.Logger
}

type dbCategory struct {
	Name      string    `db:"name"`
	Keyword   string    `db:"keyword"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
}

func (c dbCategory) toDomain() *domain.Category {
	return &domain.Category{
		Name:      c.Name,
		Keyword:   c.Keyword,
		Color:     domain.Color(c.Color),
		CreatedAt: c.CreatedAt,
	}
}

func NewPersistence(datasource string) (*Persistence, error) {
	db, err := sqlx.Connect("sqlite3", datasource)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	l := log.Logger(log.LOG_PERSISTENCE)
	l.WithField("file", datasource).Info("Connected")

	migrationSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations.FS,
		Root:       "sql",
	}

	_, err = db.Exec(`PRAGMA journal_mode=WAL`)
	if err != nil {
		return nil, fmt.Errorf("could not set journal mode: %w", err)
	}
	_, err = db.Exec(`PRAGMA synchronous=normal`)
	if err != nil {
		return nil, fmt.Errorf("could not set synchronous mode: %w", err)
	}

	appliedMigrations, err := migrate.Exec(db.DB, "sqlite3", migrationSource, migrate.Up)
	if err != nil {
		return nil, fmt.Errorf("could not migrate to newest version: %w", err)
	}

	l.WithField("migrations", appliedMigrations).Debug("Executed migrations")

	return &Persistence{
		db: db,
		l:  l,
	}, nil
}

func (p *Persistence) Close() error {
	err := p.db.Close()
	if err != nil {
		return fmt.Errorf("could not close db: %w", err)
	}
	p.l.Info("Disconnected")
	return nil
}

// Category returns nil without error when name is not registered.
func (p *Persistence) Category(name string) (*domain.Category, error) {
	c := dbCategory{}
	err := p.db.Get(
		&c,
		`SELECT name, keyword, color, created_at FROM categories WHERE name = ?`,
		name,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	return c.toDomain(), nil
}

func (p *Persistence) AllCategories() ([]*domain.Category, error) {
	dbCategories := []dbCategory{}
	err := p.db.Select(
		&dbCategories,
		`SELECT name, keyword, color, created_at FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("could not query db: %w", err)
	}

	categories := []*domain.Category{}
	for _, c := range dbCategories {
		categories = append(categories, c.toDomain())
	}

	p.l.WithField("Count", len(categories)).Debug("Found categories")

	return categories, nil
}

// SaveCategory inserts the category or updates keyword and color of an
// existing one with the same name.
func (p *Persistence) SaveCategory(category domain.Category) error {
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}

	_, err := p.db.NamedExec(
		`INSERT INTO categories (name, keyword, color, created_at)
		 VALUES (:name, :keyword, :color, :created_at)
		 ON CONFLICT(name) DO UPDATE SET keyword = excluded.keyword, color = excluded.color`,
		dbCategory{
			Name:      category.Name,
			Keyword:   category.Keyword,
			Color:     string(category.Color),
			CreatedAt: category.CreatedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("could not save category: %w", err)
	}

	p.l.WithFields(logrus.Fields{"Name": category.Name, "Keyword": category.Keyword, "Color": category.Color}).Info("Persisted category")
	return nil
}
