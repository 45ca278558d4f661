package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/kibanda-labs/cafeteria-pos/pkg/backend"
	"github.com/kibanda-labs/cafeteria-pos/pkg/config"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

// Fetches the end-of-day report from the sales backend and writes it next to
// the station, for days when nobody wants to click through the UI.
func main() {
	outDir := flag.String("out", ".", "directory to write the report file into")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "eod-report"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "eod-report",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	client, err := backend.NewClient(cfg.Backend, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build backend client", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	body, err := client.ExportReport(ctx)
	if err != nil {
		logg.Error(ctx, "export failed", err)
		os.Exit(1)
	}

	filename := fmt.Sprintf("%s/end_of_day_report_%s.txt", *outDir, time.Now().UTC().Format("2006-01-02"))
	if err := os.WriteFile(filename, []byte(body), 0o644); err != nil {
		logg.Error(ctx, "failed to write report file", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "file", filename), "end of day report written")
}
