package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-eld-planner/internal/core/model"
	"github.com/penwyp/go-eld-planner/internal/util"
	_ "modernc.org/sqlite"
)

type CacheMissReason int

const (
	MissReasonNone CacheMissReason = iota
	MissReasonError
	MissReasonNotFound
	MissReasonExpired
)

func (r CacheMissReason) String() string {
	switch r {
	case MissReasonNone:
		return "hit"
	case MissReasonError:
		return "error"
	case MissReasonNotFound:
		return "not found"
	case MissReasonExpired:
		return "expired"
	default:
		return "unknown"
	}
}

type CacheResult struct {
	Trip       *model.Trip
	FetchedAt  time.Time
	Found      bool
	MissReason CacheMissReason
}

// Cache stores trip snapshots fetched from a remote source
type Cache interface {
	Get(tripID int) CacheResult
	Set(trip *model.Trip) error
	SetAll(trips []*model.Trip) error
	List() ([]*model.Trip, error)
	Clear() error
	Preload() error
	Close() error
}

type entry struct {
	trip      *model.Trip
	fetchedAt time.Time
}

// SQLiteCache keeps trips in a SQLite file with an in-memory front
type SQLiteCache struct {
	db          *sql.DB
	ttl         time.Duration
	now         func() time.Time
	mu          sync.RWMutex
	memoryCache map[int]entry
}

// DefaultPath is the cache database location under baseDir
func DefaultPath(baseDir string) string {
	return filepath.Join(baseDir, "trips.sqlite")
}

// NewSQLiteCache opens (creating if needed) the cache database in baseDir.
// Entries older than ttl are treated as misses; a zero ttl never expires.
func NewSQLiteCache(baseDir string, ttl time.Duration) (*SQLiteCache, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", DefaultPath(baseDir))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trips (
			id         INTEGER PRIMARY KEY,
			payload    BLOB    NOT NULL,
			fetched_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteCache{
		db:          db,
		ttl:         ttl,
		now:         util.GetTimeProvider().Now,
		memoryCache: make(map[int]entry),
	}, nil
}

func (c *SQLiteCache) expired(fetchedAt time.Time) bool {
	return c.ttl > 0 && c.now().Sub(fetchedAt) > c.ttl
}

func (c *SQLiteCache) Get(tripID int) CacheResult {
	c.mu.RLock()
	mem, ok := c.memoryCache[tripID]
	c.mu.RUnlock()

	if ok {
		if c.expired(mem.fetchedAt) {
			return CacheResult{FetchedAt: mem.fetchedAt, MissReason: MissReasonExpired}
		}
		return CacheResult{Trip: mem.trip, FetchedAt: mem.fetchedAt, Found: true}
	}

	return c.getFromDB(tripID)
}

func (c *SQLiteCache) getFromDB(tripID int) CacheResult {
	var payload []byte
	var fetched int64
	err := c.db.QueryRow(`SELECT payload, fetched_at FROM trips WHERE id = ?`, tripID).Scan(&payload, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return CacheResult{MissReason: MissReasonNotFound}
	}
	if err != nil {
		util.LogWarnf("Cache lookup for trip %d failed: %v", tripID, err)
		return CacheResult{MissReason: MissReasonError}
	}

	var trip model.Trip
	if err := sonic.Unmarshal(payload, &trip); err != nil {
		util.LogWarnf("Cache entry for trip %d is corrupt: %v", tripID, err)
		return CacheResult{MissReason: MissReasonError}
	}

	fetchedAt := time.Unix(fetched, 0)
	if c.expired(fetchedAt) {
		return CacheResult{FetchedAt: fetchedAt, MissReason: MissReasonExpired}
	}

	c.mu.Lock()
	c.memoryCache[tripID] = entry{trip: &trip, fetchedAt: fetchedAt}
	c.mu.Unlock()

	return CacheResult{Trip: &trip, FetchedAt: fetchedAt, Found: true}
}

func (c *SQLiteCache) Set(trip *model.Trip) error {
	return c.SetAll([]*model.Trip{trip})
}

// SetAll upserts trips in one transaction
func (c *SQLiteCache) SetAll(trips []*model.Trip) error {
	fetchedAt := c.now().Truncate(time.Second)

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO trips (id, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, trip := range trips {
		payload, err := sonic.Marshal(trip)
		if err != nil {
			return fmt.Errorf("marshal trip %d: %w", trip.ID, err)
		}
		if _, err := stmt.Exec(trip.ID, payload, fetchedAt.Unix()); err != nil {
			return fmt.Errorf("upsert trip %d: %w", trip.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	c.mu.Lock()
	for _, trip := range trips {
		c.memoryCache[trip.ID] = entry{trip: trip, fetchedAt: fetchedAt}
	}
	c.mu.Unlock()
	return nil
}

// List returns every unexpired trip ordered by id
func (c *SQLiteCache) List() ([]*model.Trip, error) {
	entries, err := c.entries()
	if err != nil {
		return nil, err
	}
	trips := make([]*model.Trip, 0, len(entries))
	for _, e := range entries {
		trips = append(trips, e.trip)
	}
	return trips, nil
}

func (c *SQLiteCache) entries() ([]entry, error) {
	rows, err := c.db.Query(`SELECT id, payload, fetched_at FROM trips ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	var entries []entry
	for rows.Next() {
		var id int
		var payload []byte
		var fetched int64
		if err := rows.Scan(&id, &payload, &fetched); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		fetchedAt := time.Unix(fetched, 0)
		if c.expired(fetchedAt) {
			continue
		}
		var trip model.Trip
		if err := sonic.Unmarshal(payload, &trip); err != nil {
			util.LogWarnf("Skipping corrupt cache entry for trip %d: %v", id, err)
			continue
		}
		entries = append(entries, entry{trip: &trip, fetchedAt: fetchedAt})
	}
	return entries, rows.Err()
}

func (c *SQLiteCache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM trips`); err != nil {
		return fmt.Errorf("clear trips: %w", err)
	}
	c.mu.Lock()
	c.memoryCache = make(map[int]entry)
	c.mu.Unlock()
	return nil
}

// Preload warms the memory cache from disk
func (c *SQLiteCache) Preload() error {
	start := time.Now()
	entries, err := c.entries()
	if err != nil {
		return err
	}

	c.mu.Lock()
	for _, e := range entries {
		if _, ok := c.memoryCache[e.trip.ID]; !ok {
			c.memoryCache[e.trip.ID] = e
		}
	}
	c.mu.Unlock()

	util.LogDebugf("Preloaded %d cached trips in %v", len(entries), time.Since(start))
	return nil
}

// Stats returns the number of trips held in memory and on disk
func (c *SQLiteCache) Stats() (memoryCount, diskCount int) {
	c.mu.RLock()
	memoryCount = len(c.memoryCache)
	c.mu.RUnlock()

	if err := c.db.QueryRow(`SELECT COUNT(*) FROM trips`).Scan(&diskCount); err != nil {
		util.LogWarnf("Count cached trips: %v", err)
	}
	return memoryCount, diskCount
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
