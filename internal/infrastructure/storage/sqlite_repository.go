package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/ports"
)

// ErrNotFound is returned by Get for an unknown URL.
var ErrNotFound = errors.New("post not found")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const timeLayout = time.RFC3339

const schema = `
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    author TEXT,
    published_date TEXT,
    company TEXT NOT NULL,
    scraped_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_company ON posts (company);
CREATE INDEX IF NOT EXISTS idx_posts_published_date ON posts (published_date);
`

var postColumns = []string{"url", "title", "content", "author", "published_date", "company", "scraped_at"}

type postRow struct {
	ID            int64          `db:"id"`
	URL           string         `db:"url"`
	Title         string         `db:"title"`
	Content       string         `db:"content"`
	Author        sql.NullString `db:"author"`
	PublishedDate sql.NullString `db:"published_date"`
	Company       string         `db:"company"`
	ScrapedAt     string         `db:"scraped_at"`
}

// SQLiteRepository persists blog posts into a single SQLite table.
type SQLiteRepository struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

var _ ports.PostRepository = (*SQLiteRepository)(nil)

// Open creates the database file (and its directory) if needed and migrates it.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	repo := NewSQLiteRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLiteRepository wires an already opened sqlx.DB.
func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
}

// Migrate creates the posts table and its indexes.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate posts: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Upsert writes the batch in one transaction, replacing the fields of
// posts whose URL is already stored. It returns the number of rows written.
func (r *SQLiteRepository) Upsert(ctx context.Context, posts []domain.BlogPost) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}

	written := 0
	for _, post := range posts {
		post = post.Normalize()
		if post.URL == "" {
			continue
		}
		if post.ScrapedAt.IsZero() {
			post.ScrapedAt = time.Now().UTC()
		}

		query, args, err := r.builder.
			Insert("posts").
			Columns(postColumns...).
			Values(
				post.URL,
				post.Title,
				post.Content,
				nullString(post.Author),
				nullTime(post.PublishedDate),
				post.Company,
				post.ScrapedAt.Format(timeLayout),
			).
			Suffix(`ON CONFLICT (url) DO UPDATE
              SET title = excluded.title,
                  content = excluded.content,
                  author = excluded.author,
                  published_date = excluded.published_date,
                  company = excluded.company,
                  scraped_at = excluded.scraped_at`).
			ToSql()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("build upsert: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("upsert post %s: %w", post.URL, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return written, nil
}

// List returns the posts matching filter, newest first, undated last.
func (r *SQLiteRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.BlogPost, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	q := r.builder.
		Select(append([]string{"id"}, postColumns...)...).
		From("posts").
		Where(predicates(filter)).
		OrderBy("published_date IS NULL", "published_date DESC", "url ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]domain.BlogPost, 0, len(rows))
	for _, row := range rows {
		post, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Get loads a single post by URL.
func (r *SQLiteRepository) Get(ctx context.Context, url string) (domain.BlogPost, error) {
	query, args, err := r.builder.
		Select(append([]string{"id"}, postColumns...)...).
		From("posts").
		Where(sq.Eq{"url": url}).
		ToSql()
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("build get query: %w", err)
	}

	var row postRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BlogPost{}, fmt.Errorf("%w: %s", ErrNotFound, url)
		}
		return domain.BlogPost{}, fmt.Errorf("get post %s: %w", url, err)
	}
	return row.toDomain()
}

// Count returns how many posts match filter, ignoring its limit.
func (r *SQLiteRepository) Count(ctx context.Context, filter domain.PostFilter) (int, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	query, args, err := r.builder.
		Select("COUNT(*)").
		From("posts").
		Where(predicates(filter)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// predicates translates a filter into SQL conditions. DateTo covers the
// whole day, so it becomes a strict bound on the following midnight.
func predicates(filter domain.PostFilter) sq.And {
	conds := sq.And{}
	if filter.Company != "" {
		conds = append(conds, sq.Eq{"company": filter.Company})
	}
	if filter.Author != "" {
		conds = append(conds, sq.Eq{"author": filter.Author})
	}
	if filter.DateFrom != nil {
		from := truncateDay(*filter.DateFrom)
		conds = append(conds, sq.GtOrEq{"published_date": from.Format(timeLayout)})
	}
	if filter.DateTo != nil {
		next := truncateDay(*filter.DateTo).AddDate(0, 0, 1)
		conds = append(conds, sq.Lt{"published_date": next.Format(timeLayout)})
	}
	return conds
}

func (row postRow) toDomain() (domain.BlogPost, error) {
	post := domain.BlogPost{
		URL:     row.URL,
		Title:   row.Title,
		Content: row.Content,
		Author:  row.Author.String,
		Company: row.Company,
	}

	if row.PublishedDate.Valid && row.PublishedDate.String != "" {
		published, err := time.Parse(timeLayout, row.PublishedDate.String)
		if err != nil {
			return domain.BlogPost{}, fmt.Errorf("post %s: published_date: %w", row.URL, err)
		}
		post.PublishedDate = &published
	}

	scraped, err := time.Parse(timeLayout, row.ScrapedAt)
	if err != nil {
		return domain.BlogPost{}, fmt.Errorf("post %s: scraped_at: %w", row.URL, err)
	}
	post.ScrapedAt = scraped

	return post, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}
