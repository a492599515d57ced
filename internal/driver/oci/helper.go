package oci

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/termoshtt/cport/internal/fault"
)

// Helper wraps the docker/podman CLI binary for executing commands.
type Helper struct {
	command string
	logger  *slog.Logger
}

// NewHelper creates a Helper that shells out to the given command (e.g. "docker" or "podman").
func NewHelper(command string, logger *slog.Logger) *Helper {
	return &Helper{
		command: command,
		logger:  logger,
	}
}

// Run executes the command with the given args and output streams.
// A failing command is classified with classify, using the captured stderr.
func (h *Helper) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	h.logger.Debug("exec", "cmd", h.command, "args", args)

	cmd := exec.CommandContext(ctx, h.command, args...)
	cmd.Stdout = stdout

	// Capture stderr for error messages while also writing to the caller's stderr.
	var stderrBuf bytes.Buffer
	if stderr != nil {
		cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)
	} else {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Run(); err != nil {
		return h.classify(ctx, args, err, stderrBuf.String())
	}
	return nil
}

// Capture executes the command and returns captured stdout and stderr.
func (h *Helper) Capture(ctx context.Context, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	err := h.Run(ctx, args, &stdout, &stderr)
	return stdout.Bytes(), stderr.Bytes(), err
}

// Output executes the command and returns captured stdout.
func (h *Helper) Output(ctx context.Context, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	if err := h.Run(ctx, args, &stdout, nil); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Inspect runs `<cmd> inspect --type <inspectType>` on the given IDs and unmarshals
// the JSON result into the provided pointer.
func (h *Helper) Inspect(ctx context.Context, ids []string, inspectType string, result any) error {
	args := []string{"inspect", "--type", inspectType}
	args = append(args, ids...)

	out, err := h.Output(ctx, args...)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, result); err != nil {
		return fault.TransportErr(h.op(args), fmt.Errorf("decoding inspect output: %w", err))
	}
	return nil
}

// op names a CLI invocation for error messages, e.g. "docker create".
func (h *Helper) op(args []string) string {
	if len(args) == 0 {
		return h.command
	}
	return h.command + " " + args[0]
}

// classify turns a failed CLI invocation into a fault.
// Daemon rejections become ContainerFault; a missing binary, an unreachable
// daemon, cancellation and anything unrecognized are Transport.
func (h *Helper) classify(ctx context.Context, args []string, err error, stderr string) error {
	op := h.op(args)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fault.TransportErr(op, ctxErr)
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return fault.TransportErr(op, err)
	}

	if isUnreachable(stderr) {
		return fault.TransportErr(op, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr)))
	}

	if msg, ok := daemonMessage(stderr, true); ok {
		return fault.Container(op, faultCode(msg), msg)
	}

	return fault.TransportErr(op, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr)))
}

// unreachableMarkers identify a runtime daemon that cannot be contacted.
var unreachableMarkers = []string{
	"cannot connect to the docker daemon",
	"is the docker daemon running",
	"unable to connect to podman",
	"error during connect",
}

func isUnreachable(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, m := range unreachableMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// daemonPrefixes start a line carrying a structured runtime rejection.
// The bare "Error: " form is what the CLI prints for client-side lookups
// (e.g. "Error: No such container: x") and what podman prints for all
// failures; for exec it is only trusted with a CLI exit status.
var daemonPrefixes = []string{
	"Error response from daemon: ",
	"OCI runtime exec failed: ",
	"OCI runtime create failed: ",
}

// daemonMessage extracts the runtime's message from stderr.
func daemonMessage(stderr string, allowBareError bool) (string, bool) {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		for _, p := range daemonPrefixes {
			if i := strings.Index(line, p); i >= 0 {
				return line[i+len(p):], true
			}
		}
		if allowBareError {
			if rest, ok := strings.CutPrefix(line, "Error: "); ok {
				return rest, true
			}
		}
	}
	return "", false
}

// faultCode maps a runtime message to the HTTP status the engine API would
// have returned for it.
func faultCode(msg string) int {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "no such"),
		strings.Contains(lower, "not found"),
		strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "pull access denied"):
		return 404
	case strings.Contains(lower, "conflict"),
		strings.Contains(lower, "already in use"),
		strings.Contains(lower, "is not running"),
		strings.Contains(lower, "is already"),
		strings.Contains(lower, "is paused"):
		return 409
	case strings.Contains(lower, "permission denied"):
		return 403
	case strings.Contains(lower, "invalid"):
		return 400
	default:
		return 500
	}
}
