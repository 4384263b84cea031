package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for circuitc subcommands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // any error without its own exit code, e.g. a cobra argument or flag error
	ExitCommandError = 2 // unknown fixture, compilation failure
)

// ExitError carries the process exit code a cobra RunE error should produce.
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

func (e *ExitError) Unwrap() error { return e.Err }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode extracts the process exit code from an error returned by a subcommand, defaulting to
// ExitFailure for an error that didn't originate as an ExitError.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Formatter renders a subcommand's result as either plain text or JSON, and routes verbose
// logging to a separate writer so it never corrupts JSON output piped to another tool.
type Formatter struct {
	JSON    bool
	Out     io.Writer
	ErrOut  io.Writer
	Verbose bool
}

// response is the JSON envelope every subcommand result is wrapped in.
type response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (f *Formatter) Success(data interface{}, text string) error {
	if f.JSON {
		return json.NewEncoder(f.Out).Encode(response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Out, text)
	return nil
}

func (f *Formatter) Failure(err error) error {
	if f.JSON {
		return json.NewEncoder(f.Out).Encode(response{Status: "error", Error: err.Error()})
	}
	fmt.Fprintln(f.ErrOut, err.Error())
	return nil
}

func (f *Formatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.ErrOut, format+"\n", args...)
}
