package printer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dyluth/aurora-cli/internal/clierr"
	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	// Color definitions
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// Output destinations, replaced in tests
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects printing, returning a function that restores the previous writers
func SetOutput(out, errOut io.Writer) func() {
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	return func() {
		stdout, stderr = prevOut, prevErr
	}
}

// Success prints a success message in green with a checkmark prefix
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Fprintf(stdout, "✓ %s", msg)
	} else {
		green.Fprint(stdout, msg)
	}
}

// Info prints an informational message in the default color
func Info(format string, a ...any) {
	fmt.Fprintf(stdout, format, a...)
}

// Warning prints a warning message in yellow to stderr
func Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		yellow.Fprintf(stderr, "⚠️  %s", msg)
	} else {
		yellow.Fprint(stderr, msg)
	}
}

// Error prints a formatted error with title, explanation, and suggestions to stderr
// and returns a classified error carrying the title
func Error(code clierr.Code, title string, explanation string, suggestions []string) error {
	red.Fprintf(stderr, "%s\n\n", title)
	fmt.Fprintf(stderr, "%s\n", explanation)
	printSuggestions(suggestions)

	// Returned error won't be printed again due to SilenceErrors
	return clierr.New(code, "%s", title)
}

// ErrorWithContext is Error with key/value context details, printed in key order
func ErrorWithContext(code clierr.Code, title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(stderr, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(stderr, "%s\n", explanation)
	}

	if len(context) > 0 {
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(stderr, "\n")
		for _, k := range keys {
			fmt.Fprintf(stderr, "  %s: %s\n", k, context[k])
		}
	}

	printSuggestions(suggestions)

	return clierr.New(code, "%s", title)
}

// Fail prints err with its classification and returns it unchanged,
// so the exit code derived from it survives
func Fail(err error, suggestions ...string) error {
	if err == nil {
		return nil
	}
	red.Fprintf(stderr, "Error: %v\n", err)
	if code := clierr.CodeOf(err); code != clierr.ExitUnknownError {
		fmt.Fprintf(stderr, "(%s)\n", code)
	}
	printSuggestions(suggestions)
	return err
}

func printSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(stderr, "\n")
	if len(suggestions) == 1 {
		fmt.Fprintf(stderr, "%s\n", suggestions[0])
		return
	}
	fmt.Fprintf(stderr, "Either:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(stderr, "  %d. %s\n", i+1, suggestion)
	}
}

// Step prints a step message with emphasis (used in multi-step operations)
func Step(format string, a ...any) {
	cyan.Fprintf(stdout, "→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring)
func Println(a ...any) {
	fmt.Fprintln(stdout, a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring)
func Printf(format string, a ...any) {
	fmt.Fprintf(stdout, format, a...)
}
