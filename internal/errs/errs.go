// Package errs defines the failure taxonomy shared by the config loader,
// the model resolver and the generation pipeline.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindIO
	KindEncoding
	KindProcessSpawn
	KindProcessExecution
	KindInvalidModelPath
	KindEmptyResponse
	KindConfigParse
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindEncoding:
		return "encoding"
	case KindProcessSpawn:
		return "process_spawn"
	case KindProcessExecution:
		return "process_execution"
	case KindInvalidModelPath:
		return "invalid_model_path"
	case KindEmptyResponse:
		return "empty_response"
	case KindConfigParse:
		return "config_parse"
	default:
		return "unknown"
	}
}

// Error is the single concrete error type. ExitCode and Stderr are only set
// for KindProcessExecution.
type Error struct {
	Kind     Kind
	Msg      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindIO:
		b.WriteString("io error")
	case KindEncoding:
		b.WriteString("utf-8 conversion error")
	case KindProcessSpawn:
		b.WriteString("process spawn error")
	case KindProcessExecution:
		b.WriteString("process execution error")
	case KindInvalidModelPath:
		b.WriteString("invalid model path")
	case KindEmptyResponse:
		b.WriteString("empty response from llm")
	case KindConfigParse:
		b.WriteString("config parse error")
	default:
		b.WriteString("error")
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Stderr != "" {
		b.WriteString("; stderr: ")
		b.WriteString(e.Stderr)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries kind k anywhere in its chain.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

func IO(err error, format string, args ...any) error {
	return &Error{Kind: KindIO, Msg: fmt.Sprintf(format, args...), Err: err}
}

func Encoding(err error) error {
	return &Error{Kind: KindEncoding, Msg: "output is not valid utf-8", Err: err}
}

func ProcessSpawn(executable string, err error) error {
	return &Error{Kind: KindProcessSpawn, Msg: fmt.Sprintf("failed to spawn %s", executable), Err: err}
}

// ProcessExecution records a child that ran but did not exit cleanly.
// exitCode is -1 when the child was killed by a signal.
func ProcessExecution(exitCode int, stderr string, err error) error {
	return &Error{
		Kind:     KindProcessExecution,
		Msg:      fmt.Sprintf("process failed with status %d", exitCode),
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Err:      err,
	}
}

func InvalidModelPath(format string, args ...any) error {
	return &Error{Kind: KindInvalidModelPath, Msg: fmt.Sprintf(format, args...)}
}

func EmptyResponse() error {
	return &Error{Kind: KindEmptyResponse}
}

func ConfigParse(path string, err error) error {
	return &Error{Kind: KindConfigParse, Msg: fmt.Sprintf("failed to parse %s", path), Err: err}
}

// IsInvalidModelPath reports whether err indicates an unresolved model name or missing file.
func IsInvalidModelPath(err error) bool { return Is(err, KindInvalidModelPath) }

// IsProcessExecution reports whether the child ran and exited with failure.
func IsProcessExecution(err error) bool { return Is(err, KindProcessExecution) }

// IsProcessSpawn reports whether the executable could not be launched.
func IsProcessSpawn(err error) bool { return Is(err, KindProcessSpawn) }

// IsEmptyResponse reports whether the child produced only whitespace.
func IsEmptyResponse(err error) bool { return Is(err, KindEmptyResponse) }
