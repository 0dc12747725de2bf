package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordquest/internal/config"
	"wordquest/internal/database"
	"wordquest/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	pruneCmd := flag.NewFlagSet("prune", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: journal_YYYYMMDD_HHMMSS.json)")
	exportSince := exportCmd.String("since", "", "Only export events at or after this RFC3339 time")

	importInput := importCmd.String("input", "", "Input file path (required)")

	pruneOlderThan := pruneCmd.Duration("older-than", 30*24*time.Hour, "Delete events older than this")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg := config.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	journal := service.NewJournalService(db)
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := handleExport(ctx, journal, *exportOutput, *exportSince); err != nil {
			log.Fatal().Err(err).Msg("export failed")
		}

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		if err := handleImport(ctx, journal, *importInput); err != nil {
			log.Fatal().Err(err).Msg("import failed")
		}

	case "prune":
		pruneCmd.Parse(os.Args[2:])
		if *pruneOlderThan <= 0 {
			fmt.Println("Error: -older-than must be positive")
			os.Exit(1)
		}
		n, err := journal.Prune(ctx, *pruneOlderThan)
		if err != nil {
			log.Fatal().Err(err).Msg("prune failed")
		}
		fmt.Printf("Deleted %d events\n", n)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, journal *service.JournalService, outputPath, since string) error {
	var sinceTime time.Time
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return fmt.Errorf("invalid -since: %w", err)
		}
		sinceTime = t
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("journal_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	n, err := journal.Export(ctx, file, sinceTime)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d events to %s\n", n, outputPath)
	return nil
}

func handleImport(ctx context.Context, journal *service.JournalService, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	n, err := journal.Import(ctx, file)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d events from %s\n", n, inputPath)
	return nil
}

func printUsage() {
	fmt.Println("WordQuest journal tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  journal export [-output FILE] [-since RFC3339]")
	fmt.Println("  journal import -input FILE")
	fmt.Println("  journal prune [-older-than 720h]")
	fmt.Println()
	fmt.Println("The database is selected with DB_TYPE, DB_PATH and DATABASE_URL.")
}
