package stats

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/jmoiron/sqlx"
)

// Stats is a point in time snapshot of the catalog and the process serving it
type Stats struct {
	Timestamp   time.Time       `json:"timestamp"`
	Catalog     CatalogStats    `json:"catalog"`
	Redemptions RedemptionStats `json:"redemptions"`
	Runtime     RuntimeStats    `json:"runtime"`
}

type CatalogStats struct {
	Backend        string           `json:"backend"`
	Cities         int64            `json:"cities" db:"cities"`
	Venues         int64            `json:"venues" db:"venues"`
	OpenVenues     int64            `json:"open_venues" db:"open_venues"`
	Events         int64            `json:"events" db:"events"`
	UpcomingEvents int64            `json:"upcoming_events" db:"upcoming_events"`
	ByCategory     map[string]int64 `json:"upcoming_by_category"`
	SizeBytes      int64            `json:"size_bytes,omitempty"`
}

type RedemptionStats struct {
	ActiveSessions int `json:"active_sessions"`
}

type RuntimeStats struct {
	Goroutines    int    `json:"goroutines"`
	HeapAlloc     uint64 `json:"heap_alloc"`
	NumGC         uint32 `json:"num_gc"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// SessionCounter reports the number of live redemption sessions
type SessionCounter interface {
	Len() int
}

type Collector struct {
	db        *sqlx.DB
	config    config.DBConfig
	sessions  SessionCounter
	startTime time.Time
	now       func() time.Time
}

// NewCollector creates a collector. sessions may be nil.
func NewCollector(db *sqlx.DB, cfg config.DBConfig, sessions SessionCounter) *Collector {
	return &Collector{
		db:        db,
		config:    cfg,
		sessions:  sessions,
		startTime: time.Now(),
		now:       time.Now,
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	now := c.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	catalog, err := c.catalogStats(ctx, today)
	if err != nil {
		return nil, err
	}

	s := &Stats{
		Timestamp: now,
		Catalog:   *catalog,
		Runtime:   c.runtimeStats(),
	}
	if c.sessions != nil {
		s.Redemptions.ActiveSessions = c.sessions.Len()
	}
	return s, nil
}

func (c *Collector) catalogStats(ctx context.Context, today time.Time) (*CatalogStats, error) {
	catalog := &CatalogStats{Backend: string(c.config.Type)}

	q := c.db.Rebind(`
		SELECT
			(SELECT COUNT(*) FROM cities) AS cities,
			(SELECT COUNT(*) FROM venues) AS venues,
			(SELECT COUNT(*) FROM venues WHERE is_open) AS open_venues,
			(SELECT COUNT(*) FROM events) AS events,
			(SELECT COUNT(*) FROM events WHERE event_date >= ?) AS upcoming_events`)
	if err := c.db.GetContext(ctx, catalog, q, today); err != nil {
		return nil, fmt.Errorf("failed to count catalog: %w", err)
	}

	var rows []struct {
		Category string `db:"category"`
		Count    int64  `db:"n"`
	}
	q = c.db.Rebind("SELECT category, COUNT(*) AS n FROM events WHERE event_date >= ? GROUP BY category")
	if err := c.db.SelectContext(ctx, &rows, q, today); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	catalog.ByCategory = make(map[string]int64, len(rows))
	for _, r := range rows {
		catalog.ByCategory[r.Category] = r.Count
	}

	// Size is best effort; not every sqlite build exposes the pragmas
	sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
	if c.config.Type == config.DBTypePostgreSQL {
		sizeQuery = "SELECT pg_database_size(current_database())"
	}
	_ = c.db.GetContext(ctx, &catalog.SizeBytes, sizeQuery)

	return catalog, nil
}

func (c *Collector) runtimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAlloc:     m.HeapAlloc,
		NumGC:         m.NumGC,
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
