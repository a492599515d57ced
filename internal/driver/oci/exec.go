package oci

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/termoshtt/cport/internal/driver"
	"github.com/termoshtt/cport/internal/fault"
)

// chunkSize is the read size for exec output pipes.
const chunkSize = 32 * 1024

// stderrTailSize bounds the stderr kept for classifying a failed exec.
const stderrTailSize = 4 * 1024

// ExecContainer runs a command inside a container. Attached stdout and
// stderr are read concurrently and delivered as chunks in arrival order.
// A non-zero exit status of the command is returned by Wait as a plain
// exit code; only runtime failures are errors.
func (d *OCIDriver) ExecContainer(ctx context.Context, containerID string, opts *driver.ExecOptions) (*driver.ExecStream, error) {
	args := buildExecArgs(containerID, opts.Cmd)
	op := d.helper.op(args)
	d.logger.Debug("exec", "cmd", d.helper.command, "args", args)

	cmd := exec.CommandContext(ctx, d.helper.command, args...)

	var stdout io.Reader
	if opts.AttachStdout {
		r, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fault.TransportErr(op, err)
		}
		stdout = r
	}
	// stderr is always read so runtime errors can be classified.
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fault.TransportErr(op, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fault.TransportErr(op, err)
	}

	chunks := make(chan driver.Chunk)
	tail := &tailBuffer{max: stderrTailSize}

	var g errgroup.Group
	if stdout != nil {
		g.Go(func() error {
			return pump(stdout, driver.Stdout, chunks, nil)
		})
	}
	g.Go(func() error {
		var out chan<- driver.Chunk
		if opts.AttachStderr {
			out = chunks
		}
		return pump(stderr, driver.Stderr, out, tail)
	})

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(chunks)
	}()

	wait := func() (int, error) {
		pumpErr := <-done
		waitErr := cmd.Wait()
		return d.execStatus(ctx, op, waitErr, pumpErr, tail.String())
	}
	return driver.NewExecStream(chunks, wait), nil
}

// execStatus interprets how an exec ended.
func (d *OCIDriver) execStatus(ctx context.Context, op string, waitErr, pumpErr error, stderr string) (int, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fault.TransportErr(op, ctxErr)
	}
	if waitErr == nil {
		if pumpErr != nil {
			return -1, fault.TransportErr(op, pumpErr)
		}
		return 0, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return -1, fault.TransportErr(op, waitErr)
	}

	code := exitErr.ExitCode()
	if msg, ok := execRuntimeMessage(stderr, code); ok {
		return -1, fault.Container(op, faultCode(msg), msg)
	}
	return code, nil
}

// execRuntimeMessage reports whether the last stderr line of a failed exec
// is the runtime's own message rather than the command's output. The bare
// "Error: " form is only trusted with the exit statuses the CLI reserves
// for its own failures.
func execRuntimeMessage(stderr string, code int) (string, bool) {
	line := lastLine(stderr)
	lead := strings.TrimPrefix(strings.TrimPrefix(line, "docker: "), "Error: ")
	for _, p := range daemonPrefixes {
		if rest, ok := strings.CutPrefix(lead, p); ok {
			return rest, true
		}
	}
	if code >= 125 && code <= 127 {
		if rest, ok := strings.CutPrefix(line, "Error: "); ok {
			return rest, true
		}
	}
	return "", false
}

// lastLine returns the last non-blank line of s, trimmed.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// buildExecArgs constructs the `exec` argument list.
func buildExecArgs(containerID string, cmd []string) []string {
	args := []string{"exec", containerID}
	return append(args, cmd...)
}

// pump reads r until EOF, sending each read as a chunk on out (if non-nil)
// and copying it to tail (if non-nil).
func pump(r io.Reader, stream driver.StreamKind, out chan<- driver.Chunk, tail *tailBuffer) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if tail != nil {
				tail.Write(data)
			}
			if out != nil {
				out <- driver.Chunk{Stream: stream, Data: data}
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}
