package cli

import (
	"flag"
	"fmt"
	"io"

	"verifbench/internal/report"
	"verifbench/internal/runner"
)

// runReport builds the handler for the report command.
func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		resultsPath := flags.String("results", "", "Path to results.json")
		records := flags.Bool("records", false, "List every run record")
		noColor := flags.Bool("no-color", false, "Disable colored output")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			return ExitUsage
		}
		if *resultsPath == "" {
			fmt.Fprintln(stderr, "--results is required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		results, err := runner.ReadResults(*resultsPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load results: %v\n", err)
			return ExitError
		}
		fmt.Fprint(stdout, report.Render(results, *noColor))
		if *records {
			fmt.Fprintln(stdout)
			fmt.Fprint(stdout, report.RenderRecords(results, *noColor))
		}
		return ExitOK
	}
}
