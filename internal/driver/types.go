package driver

import (
	"strings"
	"time"
)

// ContainerDetails describes a running or stopped container.
type ContainerDetails struct {
	ID      string
	Image   string
	Created time.Time
	State   ContainerState
	Labels  map[string]string
}

// ContainerState holds the runtime state of a container.
type ContainerState struct {
	Status    string
	StartedAt time.Time
}

// IsRunning reports whether the container is in the running state.
func (s ContainerState) IsRunning() bool {
	return strings.EqualFold(s.Status, "running")
}

// IsRemoving reports whether the container is in the process of being removed.
func (s ContainerState) IsRemoving() bool {
	return strings.EqualFold(s.Status, "removing")
}

// Bind is a host path mounted into the container.
type Bind struct {
	Source string
	Target string
}

// String returns the --mount value for the bind.
func (b Bind) String() string {
	return "type=bind,src=" + b.Source + ",dst=" + b.Target
}

// CreateOptions holds parameters for creating a container.
type CreateOptions struct {
	Image  string
	Binds  []Bind
	Labels map[string]string
	// TTY allocates a pseudo-terminal so the image's default shell keeps
	// the container alive between execs.
	TTY bool
	// AutoRemove deletes the container when it stops.
	AutoRemove bool
}

// CreateResult is the outcome of a successful create.
type CreateResult struct {
	ID string
	// Warnings are non-fatal messages reported by the runtime.
	Warnings []string
}

// ExecOptions holds parameters for running a command in a container.
type ExecOptions struct {
	Cmd          []string
	AttachStdout bool
	AttachStderr bool
}

// StreamKind tells which output stream a chunk came from.
type StreamKind int

const (
	Stdout StreamKind = iota
	Stderr
)

// Chunk is a piece of command output, in the order the runtime produced it.
type Chunk struct {
	Stream StreamKind
	Data   []byte
}

// String decodes the chunk as UTF-8, replacing invalid bytes.
func (c Chunk) String() string {
	return strings.ToValidUTF8(string(c.Data), "�")
}

// ExecStream is a command running inside a container.
type ExecStream struct {
	chunks <-chan Chunk
	wait   func() (int, error)
}

// NewExecStream returns a stream reading from chunks. wait must block until
// the command exits and return its exit status; it is only called after
// chunks is closed.
func NewExecStream(chunks <-chan Chunk, wait func() (int, error)) *ExecStream {
	return &ExecStream{chunks: chunks, wait: wait}
}

// Chunks returns the output channel. It is closed after the last chunk.
func (s *ExecStream) Chunks() <-chan Chunk {
	return s.chunks
}

// Wait drains any unread output and returns the exit status of the command.
func (s *ExecStream) Wait() (int, error) {
	for range s.chunks {
	}
	return s.wait()
}
