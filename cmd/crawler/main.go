package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"robovac/internal/config"
	"robovac/internal/crawler"
	"robovac/internal/dataset"
	"robovac/internal/db"
	"robovac/internal/observability"
	"robovac/internal/repository"
)

// go run cmd/crawler/main.go -out=robot_vacuums.csv
// go run cmd/crawler/main.go -max=10 -db
func main() {
	out := flag.String("out", "robot_vacuums.csv", "raw dataset output path")
	catalog := flag.String("catalog", "", "catalog listing URL (overrides CATALOG_URL)")
	maxProducts := flag.Int("max", 0, "stop after this many products (0 = all)")
	persist := flag.Bool("db", false, "also save raw records to Postgres")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.Load()
	if *catalog != "" {
		cfg.CatalogURL = *catalog
	}
	if *maxProducts > 0 {
		cfg.MaxProducts = *maxProducts
	}

	observability.Start(cfg.MetricsPort)

	fetcher := crawler.NewFetcher(crawler.FetcherConfig{
		UserAgent:   cfg.UserAgent,
		MinDelay:    cfg.MinDelay,
		Retries:     cfg.RetryCount,
		BackoffBase: cfg.BackoffBase,
		Timeout:     cfg.FetchTimeout,
	})
	if cfg.RedisURL != "" {
		cache, err := crawler.NewPageCache(cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			slog.Warn("page cache disabled", "err", err)
		} else {
			fetcher.SetCache(cache)
		}
	}

	c := &crawler.Crawler{
		Discoverer: crawler.NewDiscoverer(fetcher, crawler.DiscoverConfig{
			ProductPathPrefix: cfg.ProductPathPrefix,
			PageSize:          cfg.PageSize,
			MaxPages:          cfg.MaxPages,
		}),
		Extractor:   crawler.NewExtractor(fetcher),
		MaxProducts: cfg.MaxProducts,
		TimeBudget:  cfg.TimeBudget,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	records, err := c.Run(ctx, cfg.CatalogURL)
	if err != nil {
		slog.Error("crawl failed", "err", err)
		os.Exit(1)
	}

	table := dataset.Assemble(records)
	if err := dataset.WriteFile(*out, table); err != nil {
		slog.Error("write raw dataset", "err", err)
		os.Exit(1)
	}
	slog.Info("raw dataset written", "path", *out, "rows", len(table.Rows), "columns", len(table.Columns))

	if *persist {
		if cfg.DatabaseURL == "" {
			slog.Warn("-db set but DATABASE_URL is empty, skipping persistence")
			return
		}
		dbConn, err := db.New(cfg.DatabaseURL)
		if err != nil {
			slog.Error("open database", "err", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		repo := &repository.RawRepository{DB: dbConn}
		saved := 0
		for _, rec := range records {
			if err := repo.Save(rec); err != nil {
				slog.Warn("save raw record", "source_id", rec.SourceID, "err", err)
				continue
			}
			saved++
		}
		slog.Info("raw records persisted", "saved", saved, "total", len(records))
	}
}
