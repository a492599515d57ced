// Package fault classifies the failures cport can surface to the user.
//
// Every error that leaves the engine is either a *Error or wraps one. The
// Kind is a closed set, so the reporting boundary in cmd can switch over it
// exhaustively.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure.
type Kind int

const (
	// Transport covers every failure talking to the container runtime that
	// the runtime did not report as a structured fault. It is the zero value
	// so unclassified errors land here.
	Transport Kind = iota
	// Configuration means the config file is missing, unparsable or invalid.
	Configuration
	// ContainerFault is a structured rejection from the container runtime.
	ContainerFault
	// BuildTool is a remote command that exited with a non-zero status.
	BuildTool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case ContainerFault:
		return "container fault"
	case BuildTool:
		return "build tool"
	default:
		return "transport"
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "create container".
	Op string
	// Code is the runtime fault code for ContainerFault and the exit status
	// for BuildTool. Zero otherwise.
	Code int
	// Message is the runtime-provided message for ContainerFault.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ContainerFault:
		return fmt.Sprintf("%s: container fault %d: %s", e.Op, e.Code, e.Message)
	case BuildTool:
		return fmt.Sprintf("%s: exited with status %d", e.Op, e.Code)
	}
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config returns a Configuration error.
func Config(op string, err error) *Error {
	return &Error{Kind: Configuration, Op: op, Err: err}
}

// Container returns a ContainerFault error.
func Container(op string, code int, message string) *Error {
	return &Error{Kind: ContainerFault, Op: op, Code: code, Message: message}
}

// TransportErr returns a Transport error.
func TransportErr(op string, err error) *Error {
	return &Error{Kind: Transport, Op: op, Err: err}
}

// Build returns a BuildTool error for a command that exited with exitCode.
func Build(op string, exitCode int) *Error {
	return &Error{Kind: BuildTool, Op: op, Code: exitCode}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// KindOf returns the kind of err. Errors that carry no *Error are Transport.
func KindOf(err error) Kind {
	if fe, ok := As(err); ok {
		return fe.Kind
	}
	return Transport
}
