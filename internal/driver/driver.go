package driver

import (
	"context"
	"time"
)

// Driver abstracts the container runtime (Docker or Podman).
//
// Failures the runtime reports as structured rejections are returned as
// fault.ContainerFault errors; anything else is fault.Transport.
type Driver interface {
	// ListContainers returns all containers, running or stopped, whose labels
	// contain every key/value pair in labels. Order is the runtime's.
	ListContainers(ctx context.Context, labels map[string]string) ([]ContainerDetails, error)

	// CreateContainer creates (but does not start) a container.
	CreateContainer(ctx context.Context, options *CreateOptions) (*CreateResult, error)

	// StartContainer starts a stopped container.
	StartContainer(ctx context.Context, containerID string) error

	// StopContainer stops a running container. A nil timeout uses the
	// runtime's default grace period before the kill.
	StopContainer(ctx context.Context, containerID string, timeout *time.Duration) error

	// ExecContainer starts a command inside a running container. Output is
	// delivered on the returned stream as it is produced.
	ExecContainer(ctx context.Context, containerID string, options *ExecOptions) (*ExecStream, error)
}
