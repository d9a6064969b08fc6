package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/alexivanou/crwd-api/internal/database"
	"github.com/alexivanou/crwd-api/internal/seeder"
	"github.com/alexivanou/crwd-api/internal/stats"
	"go.uber.org/zap"
)

func main() {
	var (
		format     = flag.String("format", "json", "Output format: json or text")
		migrations = flag.String("migrations", "migrations", "Migrations directory")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DB.IsMemory() {
		// A memory database starts empty; load the same catalog the server would
		if _, err := seeder.Bootstrap(ctx, db, cfg.DB, cfg.Seeder, *migrations, logger); err != nil {
			logger.Fatal("Failed to load catalog", zap.Error(err))
		}
	}

	snapshot, err := stats.NewCollector(db, cfg.DB, nil).Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshot); err != nil {
			logger.Fatal("Failed to encode statistics", zap.Error(err))
		}
	case "text":
		printCatalog(snapshot)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
}

func printCatalog(s *stats.Stats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	c := s.Catalog
	fmt.Fprintf(w, "backend\t%s\n", c.Backend)
	fmt.Fprintf(w, "cities\t%d\n", c.Cities)
	fmt.Fprintf(w, "venues\t%d (%d open)\n", c.Venues, c.OpenVenues)
	fmt.Fprintf(w, "events\t%d (%d upcoming)\n", c.Events, c.UpcomingEvents)

	categories := make([]string, 0, len(c.ByCategory))
	for name := range c.ByCategory {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		fmt.Fprintf(w, "  %s\t%d\n", name, c.ByCategory[name])
	}

	if c.SizeBytes > 0 {
		fmt.Fprintf(w, "size\t%.1f KiB\n", float64(c.SizeBytes)/1024)
	}
	fmt.Fprintf(w, "goroutines\t%d\n", s.Runtime.Goroutines)
}
