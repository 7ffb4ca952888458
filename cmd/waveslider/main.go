package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/himanishpuri/WaveSlider/internal/config"
	"github.com/himanishpuri/WaveSlider/internal/record"
	"github.com/himanishpuri/WaveSlider/internal/storage"
	"github.com/himanishpuri/WaveSlider/pkg/logger"
	"github.com/himanishpuri/WaveSlider/pkg/waveslider"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	printBanner()

	if len(os.Args) > 1 && os.Args[1] == "catalog" {
		os.Exit(handleCatalog(os.Args[2:]))
	}
	os.Exit(handleAlign(os.Args[1:]))
}

func printBanner() {
	banner := `
__        __               ____  _ _     _           
\ \      / /_ ___   _____ / ___|| (_) __| | ___ _ __ 
 \ \ /\ / / _' \ \ / / _ \\___ \| | |/ _' |/ _ \ '__|
  \ V  V / (_| |\ V /  __/ ___) | | | (_| |  __/ |   
   \_/\_/ \__,_| \_/ \___||____/|_|_|\__,_|\___|_|   

        Seismic Waveform Alignment Tool
`
	fmt.Fprintln(os.Stderr, banner)
}

func handleAlign(args []string) int {
	log := logger.GetLogger()

	fs := config.NewFlagSet("waveslider")
	cfg, err := config.Load(fs, args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n\n", err)
		fmt.Fprintln(os.Stderr, "Usage: waveslider --f1 <Hz> --f2 <Hz> --ev1 <event> --ev2 <event> --station <sta> --chan1 <c> --chan2 <c> --chan3 <c> [options]")
		fs.PrintDefaults()
		return 1
	}
	if lvl, ok := logger.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aligner, err := waveslider.New(append(cfg.Options(), waveslider.WithLogger(log))...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to set up aligner: %v\n", err)
		return 1
	}
	defer aligner.Close()

	log.Infof("📂 Loading %s/%s.{%s,%s}", cfg.TopDir, cfg.Station, cfg.Event1, cfg.Event2)
	if err := aligner.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	log.Infof("🎛️  Filtering %g-%g Hz (%d corners), resampling to %g Hz", cfg.F1, cfg.F2, cfg.Corners, cfg.Rate)
	if _, err := aligner.Preprocess(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Preprocessing failed: %v\n", err)
		return 1
	}

	state, err := aligner.Run(ctx, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}

	rec, err := aligner.Finish(ctx, state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		return 1
	}
	if rec != nil {
		log.Infof("✅ Appended to %s", cfg.OutFile)
	}
	return 0
}

func handleCatalog(args []string) int {
	log := logger.GetLogger()

	fs := pflag.NewFlagSet("catalog", pflag.ContinueOnError)
	dbPath := fs.String("db", getEnvOrDefault("WAVESLIDER_CATALOG", storage.DefaultDBFile), "Path to the SQLite catalog")
	station := fs.String("station", "", "Only list records for this station")
	deleteID := fs.String("delete", "", "Delete the record with this ID")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	cat, err := storage.NewCatalog(*dbPath)
	if err != nil {
		fmt.Printf("❌ Failed to open catalog: %v\n", err)
		log.Errorf("Catalog initialization failed: %v", err)
		return 1
	}
	defer cat.Close()

	ctx := context.Background()

	if *deleteID != "" {
		if err := cat.Delete(ctx, *deleteID); err != nil {
			fmt.Printf("❌ Failed to delete %s: %v\n", *deleteID, err)
			return 1
		}
		fmt.Printf("🗑️  Deleted record %s\n", *deleteID)
		return 0
	}

	records, err := cat.List(ctx, *station)
	if err != nil {
		fmt.Printf("❌ Failed to list records: %v\n", err)
		log.Errorf("List failed: %v", err)
		return 1
	}

	if len(records) == 0 {
		fmt.Println("\n📭 No records in catalog")
		return 0
	}

	fmt.Printf("\n📚 Found %d record(s):\n\n", len(records))
	for i, r := range records {
		fmt.Printf("%d. [%s]\n   %s", i+1, r.ID, record.Line(r))
	}
	log.Infof("Listed %d records", len(records))
	return 0
}
