package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/termoshtt/cport/internal/config"
	"github.com/termoshtt/cport/internal/driver"
)

// HomeEnv overrides the cport state directory (default ~/.cport).
const HomeEnv = "CPORT_HOME"

// lockRetryDelay is the polling interval while waiting for a creation lock.
const lockRetryDelay = 100 * time.Millisecond

// Engine finds or creates build containers and drives sessions on them.
type Engine struct {
	driver   driver.Driver
	logger   *slog.Logger
	stdout   io.Writer
	stderr   io.Writer
	lockDir  string
	progress func(string)
	frames   *frameHooks
}

// frameHooks are called around each streamed remote command.
type frameHooks struct {
	start func(title string)
	end   func()
}

// New creates an Engine with the given dependencies. Command output goes to
// os.Stdout and runtime warnings to os.Stderr until SetOutput is called.
// Creation is not serialized across processes until SetLockDir is called.
func New(d driver.Driver, logger *slog.Logger) *Engine {
	return &Engine{
		driver: d,
		logger: logger,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// SetOutput overrides the default stdout and stderr writers.
func (e *Engine) SetOutput(stdout, stderr io.Writer) {
	e.stdout = stdout
	e.stderr = stderr
}

// SetProgress sets a callback for user-facing progress messages.
func (e *Engine) SetProgress(fn func(string)) {
	e.progress = fn
}

// SetFrames sets callbacks run before and after each remote command whose
// output is relayed.
func (e *Engine) SetFrames(start func(title string), end func()) {
	e.frames = &frameHooks{start: start, end: end}
}

// SetLockDir enables per-identity creation locks stored in dir.
func (e *Engine) SetLockDir(dir string) {
	e.lockDir = dir
}

// DefaultLockDir returns $CPORT_HOME/locks, or ~/.cport/locks.
func DefaultLockDir() (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, "locks"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".cport", "locks"), nil
}

// reportProgress sends a message to the progress callback (if set)
// and logs it at debug level.
func (e *Engine) reportProgress(msg string) {
	if e.progress != nil {
		e.progress(msg)
	}
	e.logger.Debug(msg)
}

// Acquire finds or creates the build container for cfg and returns an
// unstarted session on it.
func (e *Engine) Acquire(ctx context.Context, cfg *config.Config) (*Session, error) {
	logger := e.logger.With("run", uuid.NewString())
	h, err := e.createOrAdopt(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return newSession(e, cfg, h, logger), nil
}

// Run acquires a session for cfg and executes steps strictly in order.
// Once the container has started it is always stopped, even when a step
// fails, ctx is canceled or steps omit StepStop; a failed stop is only
// returned if every step succeeded.
func (e *Engine) Run(ctx context.Context, cfg *config.Config, steps []Step) error {
	s, err := e.Acquire(ctx, cfg)
	if err != nil {
		return err
	}

	for _, step := range steps {
		if err := step.run(ctx, s); err != nil {
			if step != StepStop {
				e.stopAfterFailure(ctx, s)
			}
			return err
		}
	}

	if s.State() == Unstarted || s.State() == Stopped {
		return nil
	}
	return s.Stop(context.WithoutCancel(ctx))
}

// stopAfterFailure stops a started session without masking the original error.
func (e *Engine) stopAfterFailure(ctx context.Context, s *Session) {
	if s.State() == Unstarted || s.State() == Stopped {
		return
	}
	if err := s.Stop(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("failed to stop container after error", "container", s.handle.ID, "error", err)
	}
}

// Status returns the build container for cfg, or nil if none exists.
// It never creates a container.
func (e *Engine) Status(ctx context.Context, cfg *config.Config) (*driver.ContainerDetails, error) {
	return e.Locate(ctx, IdentityOf(cfg))
}

// List returns every container created by cport.
func (e *Engine) List(ctx context.Context) ([]driver.ContainerDetails, error) {
	containers, err := e.driver.ListContainers(ctx, map[string]string{LabelSource: ""})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}
	return containers, nil
}

// lock takes the creation lock for id. The returned function releases it.
func (e *Engine) lock(ctx context.Context, id Identity) (func(), error) {
	if e.lockDir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(e.lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(filepath.Join(e.lockDir, id.Key()+".lock"))
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("locking build container: %w", err)
	}
	if !locked {
		return nil, errors.New("locking build container: lock not acquired")
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			e.logger.Warn("failed to release lock", "path", fl.Path(), "error", err)
		}
	}, nil
}
