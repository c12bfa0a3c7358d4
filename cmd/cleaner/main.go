package main

import (
	"flag"
	"log/slog"
	"os"

	"robovac/internal/cleaning"
	"robovac/internal/config"
	"robovac/internal/dataset"
	"robovac/internal/observability"
)

// go run cmd/cleaner/main.go -in=robot_vacuums.csv -out=robot_vacuums_cleaned.csv
func main() {
	in := flag.String("in", "robot_vacuums.csv", "raw dataset input path")
	out := flag.String("out", "robot_vacuums_cleaned.csv", "cleaned dataset output path")
	reportPath := flag.String("report", "cleaning_report.txt", "correction report output path")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.Load()

	table, err := dataset.ReadFile(*in)
	if err != nil {
		slog.Error("read raw dataset", "err", err)
		os.Exit(1)
	}

	engine := cleaning.NewEngine(cleaning.Config{
		DropThreshold: cfg.DropThreshold,
		Ranges:        cfg.Ranges,
	})
	res, err := engine.Clean(table)
	if err != nil {
		slog.Error("cleaning failed", "err", err)
		os.Exit(1)
	}

	observability.CorrectionsApplied.Add(float64(len(res.Report.Corrections)))
	observability.RangeRejections.Add(float64(len(res.Report.Rejections)))

	if err := res.WriteFile(*out); err != nil {
		slog.Error("write cleaned dataset", "err", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*reportPath, []byte(res.Report.Render()), 0o644); err != nil {
		slog.Error("write report", "err", err)
		os.Exit(1)
	}

	slog.Info("cleaning finished",
		"rows_in", res.Report.RowsIn,
		"rows_out", res.Report.RowsOut,
		"corrections", len(res.Report.Corrections),
		"rejections", len(res.Report.Rejections),
		"columns_dropped", len(res.Report.DroppedColumns),
		"duplicates_removed", res.Report.DuplicatesRemoved,
		"cleaned", *out,
		"report", *reportPath,
	)
}
