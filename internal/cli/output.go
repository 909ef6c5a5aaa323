package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/weiawesome/genguid/internal/formatter"
	"github.com/weiawesome/genguid/internal/genlog"
	"github.com/weiawesome/genguid/internal/packet"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // generation or storage failure
	ExitCommandError = 2 // bad arguments or configuration
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

var success = color.New(color.FgGreen)

func printSuccess(w io.Writer, format string, args ...any) {
	success.Fprintf(w, format+"\n", args...)
}

// printPacket writes one history line: sequence, formatted value, timestamp.
func printPacket(w io.Writer, f *formatter.Formatter, p packet.Packet) {
	fmt.Fprintf(w, "%d\t%s\t%s\n", p.SequenceNumber, f.Format(p.Value), p.Timestamp.UTC().Format(genlog.TimestampLayout))
}
