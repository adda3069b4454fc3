package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ammar-qazi/HisaabFlow-sub001/internal/logger"
	"github.com/ammar-qazi/HisaabFlow-sub001/internal/recon"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "detect":
		runDetect(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Transfer Reconciliation CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  reconcile <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  detect    Detect transfer pairs in a batch of cleaned transactions")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'reconcile detect -h' for detect options.")
}

func runDetect(log zerolog.Logger) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	recordsPath := fs.String("records", "", "JSON file with cleaned transaction records")
	finalPath := fs.String("final", "", "JSON file with the final categorized collection")
	configPath := fs.String("config", "", "optional YAML config with tolerances and bank rules")
	overridesPath := fs.String("overrides", "", "optional JSON file with confirmed/rejected pair keys")
	finalOut := fs.String("final-out", "", "optional path to write the relabeled final collection")
	fs.Parse(os.Args[2:])

	if *recordsPath == "" || *finalPath == "" {
		log.Fatal().Msg("Error: --records and --final are required")
	}

	cfg := recon.DefaultConfig()
	if *configPath != "" {
		loaded, err := recon.LoadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Loading config failed")
		}
		cfg = loaded
	}

	var records []*recon.TransactionRecord
	if err := readJSON(*recordsPath, &records); err != nil {
		log.Fatal().Err(err).Msg("Loading records failed")
	}
	var final []*recon.OutputRecord
	if err := readJSON(*finalPath, &final); err != nil {
		log.Fatal().Err(err).Msg("Loading final collection failed")
	}

	var overrides *recon.OverrideSet
	if *overridesPath != "" {
		var raw struct {
			Confirmed []string `json:"confirmed"`
			Rejected  []string `json:"rejected"`
		}
		if err := readJSON(*overridesPath, &raw); err != nil {
			log.Fatal().Err(err).Msg("Loading overrides failed")
		}
		overrides = recon.NewOverrideSet(raw.Confirmed, raw.Rejected)
	}

	ctx := logger.WithContext(context.Background(), log)
	report, err := recon.NewEngine(cfg).Reconcile(ctx, records, final, overrides)
	if err != nil {
		log.Fatal().Err(err).Msg("Reconciliation failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("Writing report failed")
	}

	if *finalOut != "" {
		if err := writeJSON(*finalOut, final); err != nil {
			log.Fatal().Err(err).Msg("Writing relabeled collection failed")
		}
	}
}

func readJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
