// Package store keeps named diagram snapshots in a sqlite database.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/diagramkit/internal/cachemanager"
	"github.com/zjrosen/diagramkit/internal/codec"
	"github.com/zjrosen/diagramkit/internal/events"
	"github.com/zjrosen/diagramkit/internal/log"
	"github.com/zjrosen/diagramkit/internal/model"
	"github.com/zjrosen/diagramkit/internal/tracing"
)

// Store errors
var (
	ErrNotFound    = errors.New("diagram not found")
	ErrInvalidName = errors.New("diagram name cannot be empty")
)

// Entry describes one stored snapshot.
type Entry struct {
	Name      string
	DiagramID string
	Format    string
	Revision  int64
	UpdatedAt time.Time
	Bytes     int
}

// timeLayout keeps updated_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type snapshot struct {
	Entry
	Body []byte
}

// Store is a sqlite-backed snapshot store with a read-through cache in
// front of Load.
type Store struct {
	db      *sql.DB
	path    string
	codec   codec.Codec
	tracer  trace.Tracer
	ttl     time.Duration
	cache   cachemanager.CacheManager[string, snapshot]
	loader  *cachemanager.Loader[string, snapshot]
	noCache bool
	version uint
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the encoding used by Save. Defaults to msgpack.
func WithCodec(c codec.Codec) Option { return func(s *Store) { s.codec = c } }

// WithTracer sets the tracer for store spans.
func WithTracer(t trace.Tracer) Option { return func(s *Store) { s.tracer = t } }

// WithCacheTTL sets how long loaded snapshots stay cached. Zero disables the cache.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Store) {
		s.ttl = d
		s.noCache = d <= 0
	}
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		codec:  codec.NewMsgpackCodec(),
		tracer: noop.NewTracerProvider().Tracer("noop"),
		ttl:    cachemanager.DefaultExpiration,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	log.Debug(log.CatStore, "Opening database", "path", path)
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to open database", err, "path", path)
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		log.ErrorErr(log.CatStore, "Failed to ping database", err, "path", path)
		return nil, err
	}
	if s.version, err = migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.db = db

	s.cache = cachemanager.NewInMemoryCacheManager[string, snapshot]("store", s.ttl, cachemanager.DefaultCleanupInterval)
	s.loader = cachemanager.NewLoader(s.cache, s.fetch, cachemanager.WithTTL(s.ttl), cachemanager.Bypass(s.noCache))

	log.Info(log.CatStore, "Connected to database", "path", path, "schema", s.version)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	stats := s.loader.Stats()
	log.Debug(log.CatStore, "Closing database", "path", s.path, "cache_hits", stats.Hits, "cache_misses", stats.Misses)
	return s.db.Close()
}

func (s *Store) Path() string        { return s.path }
func (s *Store) SchemaVersion() uint { return s.version }

// CacheStats reports how many loads were served from the cache.
func (s *Store) CacheStats() cachemanager.Stats { return s.loader.Stats() }

// Save encodes d and stores it under name, bumping the revision.
func (s *Store) Save(ctx context.Context, name string, d *model.Diagram) (Entry, error) {
	if name == "" {
		return Entry{}, ErrInvalidName
	}
	var entry Entry
	err := tracing.Run(ctx, s.tracer, tracing.SpanStoreSave, func(ctx context.Context, span trace.Span) error {
		var buf bytes.Buffer
		if err := s.codec.Encode(d, &buf); err != nil {
			return err
		}
		now := time.Now().UTC()
		row := s.db.QueryRowContext(ctx, `
			INSERT INTO diagrams (name, diagram_id, format, body, revision, updated_at)
			VALUES (?, ?, ?, ?, 1, ?)
			ON CONFLICT(name) DO UPDATE SET
				diagram_id = excluded.diagram_id,
				format = excluded.format,
				body = excluded.body,
				revision = diagrams.revision + 1,
				updated_at = excluded.updated_at
			RETURNING revision`,
			name, d.ID(), s.codec.Format(), buf.Bytes(), now.Format(timeLayout))
		var revision int64
		if err := row.Scan(&revision); err != nil {
			return fmt.Errorf("save %s: %w", name, err)
		}

		entry = Entry{
			Name:      name,
			DiagramID: d.ID(),
			Format:    s.codec.Format(),
			Revision:  revision,
			UpdatedAt: now,
			Bytes:     buf.Len(),
		}
		if !s.noCache {
			s.cache.Set(ctx, name, snapshot{Entry: entry, Body: buf.Bytes()}, s.ttl)
		}
		span.SetAttributes(attribute.Int64(tracing.AttrRevision, revision), attribute.Int(tracing.AttrBytes, buf.Len()))
		return nil
	}, attribute.String(tracing.AttrDiagramName, name), attribute.String(tracing.AttrFormat, s.codec.Format()))
	if err != nil {
		log.ErrorErr(log.CatStore, "Save failed", err, "name", name)
		return Entry{}, err
	}
	log.Info(log.CatStore, "Diagram saved", "name", name, "revision", entry.Revision)
	return entry, nil
}

// Load decodes the snapshot stored under name onto bus.
func (s *Store) Load(ctx context.Context, name string, bus *events.Aggregator) (*model.Diagram, Entry, error) {
	var (
		d     *model.Diagram
		entry Entry
	)
	err := tracing.Run(ctx, s.tracer, tracing.SpanStoreLoad, func(ctx context.Context, span trace.Span) error {
		snap, hit, err := s.loader.Get(ctx, name)
		span.SetAttributes(attribute.Bool(tracing.AttrCacheHit, hit))
		if err != nil {
			return err
		}
		c, err := codec.ForFormat(snap.Format)
		if err != nil {
			return err
		}
		if d, err = c.Decode(bytes.NewReader(snap.Body), bus); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		entry = snap.Entry
		span.SetAttributes(attribute.Int64(tracing.AttrRevision, entry.Revision), attribute.String(tracing.AttrDiagramID, entry.DiagramID))
		return nil
	}, attribute.String(tracing.AttrDiagramName, name))
	if err != nil {
		return nil, Entry{}, err
	}
	return d, entry, nil
}

func (s *Store) fetch(ctx context.Context, name string) (snapshot, error) {
	var snap snapshot
	err := tracing.Run(ctx, s.tracer, tracing.SpanStoreFetch, func(ctx context.Context, _ trace.Span) error {
		var updated string
		err := s.db.QueryRowContext(ctx,
			`SELECT diagram_id, format, body, revision, updated_at FROM diagrams WHERE name = ?`, name,
		).Scan(&snap.DiagramID, &snap.Format, &snap.Body, &snap.Revision, &updated)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err != nil {
			return err
		}
		snap.Name = name
		snap.Bytes = len(snap.Body)
		snap.UpdatedAt, err = time.Parse(timeLayout, updated)
		return err
	}, attribute.String(tracing.AttrDiagramName, name))
	return snap, err
}

// List returns every stored snapshot, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := tracing.Run(ctx, s.tracer, tracing.SpanStoreList, func(ctx context.Context, span trace.Span) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT name, diagram_id, format, revision, updated_at, length(body)
			FROM diagrams
			ORDER BY updated_at DESC, name`)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var (
				e       Entry
				updated string
			)
			if err := rows.Scan(&e.Name, &e.DiagramID, &e.Format, &e.Revision, &updated, &e.Bytes); err != nil {
				return err
			}
			if e.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(entries)))
		return rows.Err()
	})
	return entries, err
}

// Delete removes name. It returns ErrNotFound when nothing was stored.
func (s *Store) Delete(ctx context.Context, name string) error {
	return tracing.Run(ctx, s.tracer, tracing.SpanStoreDelete, func(ctx context.Context, _ trace.Span) error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM diagrams WHERE name = ?`, name)
		if err != nil {
			return err
		}
		_ = s.loader.Invalidate(ctx, name)
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		log.Info(log.CatStore, "Diagram deleted", "name", name)
		return nil
	}, attribute.String(tracing.AttrDiagramName, name))
}
