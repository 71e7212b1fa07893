package runner

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const verbosePrefix = "[verbose]"

type verboseStyle int

const (
	styleDefault verboseStyle = iota
	styleRun
	styleScore
	styleError
)

// verboseCodes maps a style to its ANSI escape sequence. The prefix uses a
// dim gray regardless of style.
var verboseCodes = map[verboseStyle]string{
	styleRun:   "\x1b[1m\x1b[34m",
	styleScore: "\x1b[1m\x1b[32m",
	styleError: "\x1b[1m\x1b[31m",
}

const (
	verboseReset       = "\x1b[0m"
	verbosePrefixColor = "\x1b[2m\x1b[90m"
)

// logVerbose writes one progress line when verbose output is on. Styling is
// applied only when the writer is a terminal and the environment does not
// opt out of color.
func logVerbose(enabled bool, writer io.Writer, noColor bool, style verboseStyle, format string, args ...any) {
	if !enabled || writer == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	if noColor || !writerIsStyledTerminal(writer) {
		fmt.Fprintf(writer, "%s %s\n", verbosePrefix, line)
		return
	}
	if code, ok := verboseCodes[style]; ok {
		line = code + line + verboseReset
	}
	fmt.Fprintf(writer, "%s %s\n", verbosePrefixColor+verbosePrefix+verboseReset, line)
}

// writerIsStyledTerminal honors NO_COLOR, CLICOLOR=0, and TERM=dumb before
// checking whether the writer is an actual terminal.
func writerIsStyledTerminal(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if strings.EqualFold(os.Getenv("CLICOLOR"), "0") {
		return false
	}
	if fder, ok := writer.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
