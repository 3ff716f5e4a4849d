package handler

import (
	"errors"
	"fmt"
	"maps"
)

// ResultStatus is the outcome of a handler or of a whole dispatch.
type ResultStatus uint8

const (
	// StatusUnhandled: no handler claimed the command. Not an error.
	StatusUnhandled ResultStatus = iota
	// StatusPass: the handler declined; the next one in the chain runs.
	StatusPass
	StatusOK
	// StatusNoOp: the command was claimed but rejected or changed nothing.
	StatusNoOp
	StatusError
	// StatusCancelled: a pre-dispatch hook stopped the command.
	StatusCancelled
)

var statusNames = [...]string{
	StatusUnhandled: "unhandled",
	StatusPass:      "pass",
	StatusOK:        "ok",
	StatusNoOp:      "noop",
	StatusError:     "error",
	StatusCancelled: "cancelled",
}

func (s ResultStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Result is what a handler returns. The dispatcher fills in Command.
type Result struct {
	Status  ResultStatus
	Error   error
	Message string
	Command string
	Data    map[string]any
}

// Handled reports whether the result ends the handler chain.
func (r Result) Handled() bool {
	return r.Status == StatusOK || r.Status == StatusNoOp || r.Status == StatusError
}

func (r Result) IsOK() bool    { return r.Status == StatusOK }
func (r Result) IsError() bool { return r.Status == StatusError }

func Success() Result { return Result{Status: StatusOK} }

func SuccessWithMessage(msg string) Result { return Result{Status: StatusOK, Message: msg} }

func SuccessWithData(key string, value any) Result {
	return Result{Status: StatusOK, Data: map[string]any{key: value}}
}

func NoOp() Result { return Result{Status: StatusNoOp} }

func NoOpWithMessage(msg string) Result { return Result{Status: StatusNoOp, Message: msg} }

func Error(err error) Result { return Result{Status: StatusError, Error: err} }

// Errorf builds an error result; %w wraps as in fmt.Errorf.
func Errorf(format string, args ...any) Result {
	return Error(fmt.Errorf(format, args...))
}

func Pass() Result { return Result{Status: StatusPass} }

func Unhandled() Result { return Result{Status: StatusUnhandled} }

func Cancelled() Result { return Result{Status: StatusCancelled} }

func CancelledWithMessage(msg string) Result {
	return Result{Status: StatusCancelled, Message: msg}
}

// FromError maps the error of an editor update onto a result: nil is
// Success, an error matching one of rejected is NoOp, anything else is
// Error.
func FromError(err error, rejected ...error) Result {
	if err == nil {
		return Success()
	}
	for _, r := range rejected {
		if errors.Is(err, r) {
			return NoOp()
		}
	}
	return Error(err)
}

// WithData returns a copy of r with key set. The original map is not
// modified.
func (r Result) WithData(key string, value any) Result {
	data := make(map[string]any, len(r.Data)+1)
	maps.Copy(data, r.Data)
	data[key] = value
	r.Data = data
	return r
}

func (r Result) GetData(key string) (any, bool) {
	v, ok := r.Data[key]
	return v, ok
}

// DataAs returns the value at key if it has type T.
func DataAs[T any](r Result, key string) (T, bool) {
	v, ok := r.Data[key].(T)
	return v, ok
}

func (r Result) GetDataString(key string) string {
	s, _ := DataAs[string](r, key)
	return s
}

// GetDataInt accepts the numeric types produced by Go handlers and by
// values crossing the Lua bridge.
func (r Result) GetDataInt(key string) int {
	switch n := r.Data[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (r Result) GetDataBool(key string) bool {
	b, _ := DataAs[bool](r, key)
	return b
}
