package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"verifbench/internal/caseset"
	"verifbench/internal/config"
	"verifbench/internal/duckdb"
	"verifbench/internal/logging"
	"verifbench/internal/report"
	"verifbench/internal/runner"
)

// runBenchmark is swappable for tests.
var runBenchmark = runner.Run

// runRun builds the handler for the run command.
func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", config.DefaultPath, "Path to config file")
		casesPath := flags.String("cases", "", "Path to case set file")
		modelName := flags.String("model", "", "Run only the named model")
		outputDir := flags.String("output-dir", "", "Override output directory")
		maxRounds := flags.Int("max-rounds", 0, "Override round budget")
		logLevel := flags.String("log-level", "info", "Log level")
		verbose := flags.Bool("verbose", false, "Print per-run progress")
		noColor := flags.Bool("no-color", false, "Disable colored output")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			return ExitUsage
		}
		if *casesPath == "" {
			fmt.Fprintln(stderr, "--cases is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		set, err := caseset.Load(*casesPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load case set: %v\n", err)
			return ExitError
		}
		models, err := selectModels(cfg.Models, *modelName)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitError
		}
		registry, err := newEvidenceRegistry(cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to build tool registry: %v\n", err)
			return ExitError
		}

		rounds := cfg.Defaults.MaxRounds
		if *maxRounds > 0 {
			rounds = *maxRounds
		}
		dir := cfg.Output.Dir
		if *outputDir != "" {
			dir = *outputDir
		}

		results, err := runBenchmark(context.Background(), runner.Options{
			Models:        models,
			Cases:         set.Cases,
			Registry:      registry,
			Providers:     newProviderFactory(),
			MaxRounds:     rounds,
			Temperature:   cfg.Defaults.Temperature,
			Workers:       cfg.Defaults.Workers,
			Logger:        logging.New(*logLevel),
			Verbose:       *verbose,
			VerboseWriter: stderr,
			NoColor:       *noColor,
		})
		if err != nil {
			fmt.Fprintf(stderr, "Run failed: %v\n", err)
			return ExitError
		}

		paths, err := runner.WriteResults(results, dir)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to write results: %v\n", err)
			return ExitError
		}
		if cfg.Output.DatabasePath != "" {
			if err := storeResults(cfg.Output.DatabasePath, results); err != nil {
				fmt.Fprintf(stderr, "Failed to store results: %v\n", err)
				return ExitError
			}
		}

		fmt.Fprintf(stdout, "Run %s completed\n", results.RunID)
		fmt.Fprintf(stdout, "Results: %s\n\n", paths.ResultsPath())
		fmt.Fprint(stdout, report.Render(results, *noColor))
		return ExitOK
	}
}

// storeResults persists results to the configured DuckDB database.
func storeResults(path string, results runner.Results) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	db, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return duckdb.InsertResults(context.Background(), db, results)
}
