package cli

import (
	"flag"
	"fmt"
	"io"

	"verifbench/internal/agent"
	"verifbench/internal/caseset"
	"verifbench/internal/report"
	"verifbench/internal/runner"
	"verifbench/internal/score"
)

// runScore builds the handler for the score command: offline re-grading of a
// stored results file against a case set.
func runScore(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		resultsPath := flags.String("results", "", "Path to results.json")
		casesPath := flags.String("cases", "", "Path to case set file")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			return ExitUsage
		}
		if *resultsPath == "" || *casesPath == "" {
			fmt.Fprintln(stderr, "--results and --cases are required")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		results, err := runner.ReadResults(*resultsPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load results: %v\n", err)
			return ExitError
		}
		set, err := caseset.Load(*casesPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load case set: %v\n", err)
			return ExitError
		}

		rescored, missing := rescore(results, set.Cases)
		if missing > 0 {
			fmt.Fprintf(stderr, "Warning: %d records reference cases absent from the case set\n", missing)
		}
		fmt.Fprint(stdout, report.Render(rescored, true))
		return ExitOK
	}
}

// rescore grades every non-failed record against the case set and rebuilds
// the summary. Records whose case is missing keep their stored score.
func rescore(results runner.Results, cases []caseset.TestCase) (runner.Results, int) {
	byID := make(map[string]caseset.TestCase, len(cases))
	for _, testCase := range cases {
		byID[testCase.ID] = testCase
	}
	missing := 0
	for i, record := range results.Records {
		if record.Status == agent.StatusFailed {
			continue
		}
		testCase, ok := byID[record.CaseID]
		if !ok {
			missing++
			continue
		}
		graded := score.Grade(testCase, record.FinalAnswer, record.Turns)
		results.Records[i].Score = &graded
	}
	results.Summary = runner.Summarize(results.Records)
	return results, missing
}
