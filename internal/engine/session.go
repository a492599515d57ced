package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/termoshtt/cport/internal/config"
	"github.com/termoshtt/cport/internal/driver"
	"github.com/termoshtt/cport/internal/fault"
	"github.com/termoshtt/cport/internal/phase"
	"github.com/termoshtt/cport/internal/relay"
)

// ErrOutOfOrder is returned when a session operation is called in a state
// that does not allow it.
var ErrOutOfOrder = errors.New("session operation out of order")

// State is the position of a session in the build protocol.
type State int

const (
	Unstarted State = iota
	Started
	Provisioned
	Configured
	Built
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Started:
		return "started"
	case Provisioned:
		return "provisioned"
	case Configured:
		return "configured"
	case Built:
		return "built"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session owns one build container for the duration of a run and walks it
// through Start, Provision, Configure, Build and Stop. Each call blocks
// until the remote operation and its output stream are done. A failed call
// leaves the state unchanged; there is no rollback.
//
// A Session is not safe for concurrent use.
type Session struct {
	engine *Engine
	cfg    *config.Config
	handle Handle
	state  State
	logger *slog.Logger
}

func newSession(e *Engine, cfg *config.Config, h *Handle, logger *slog.Logger) *Session {
	return &Session{
		engine: e,
		cfg:    cfg,
		handle: *h,
		logger: logger.With("container", h.ID),
	}
}

// Handle returns the container the session works on.
func (s *Session) Handle() Handle {
	return s.handle
}

// State returns the current protocol state.
func (s *Session) State() State {
	return s.state
}

// Start starts the container.
func (s *Session) Start(ctx context.Context) error {
	if err := s.expect("start", Unstarted); err != nil {
		return err
	}
	s.logger.Info("start container")
	if err := s.engine.driver.StartContainer(ctx, s.handle.ID); err != nil {
		return fmt.Errorf("starting container: %w", err)
	}
	s.state = Started
	return nil
}

// Provision refreshes the package index and installs the configured
// packages, relaying the output of both commands.
func (s *Session) Provision(ctx context.Context) error {
	if err := s.expect("provision", Started); err != nil {
		return err
	}
	s.logger.Info("apt install", "packages", s.cfg.Apt)
	if err := s.runPhase(ctx, phase.Provision); err != nil {
		return err
	}
	s.state = Provisioned
	return nil
}

// Configure runs the cmake configure step.
func (s *Session) Configure(ctx context.Context) error {
	if err := s.expect("configure", Started, Provisioned); err != nil {
		return err
	}
	s.logger.Info("cmake configure step")
	if err := s.runPhase(ctx, phase.Configure); err != nil {
		return err
	}
	s.state = Configured
	return nil
}

// Build runs the cmake build step.
func (s *Session) Build(ctx context.Context) error {
	if err := s.expect("build", Configured); err != nil {
		return err
	}
	s.logger.Info("cmake build step")
	if err := s.runPhase(ctx, phase.Build); err != nil {
		return err
	}
	s.state = Built
	return nil
}

// Stop stops the container with the runtime's default grace period. The
// container itself is kept for the next run.
func (s *Session) Stop(ctx context.Context) error {
	if s.state == Unstarted || s.state == Stopped {
		return fmt.Errorf("%w: cannot stop in state %s", ErrOutOfOrder, s.state)
	}
	s.logger.Info("stop container")
	if err := s.engine.driver.StopContainer(ctx, s.handle.ID, nil); err != nil {
		return fmt.Errorf("stopping container: %w", err)
	}
	s.state = Stopped
	return nil
}

// expect checks that the session is in one of the allowed states.
func (s *Session) expect(op string, allowed ...State) error {
	for _, a := range allowed {
		if s.state == a {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s in state %s", ErrOutOfOrder, op, s.state)
}

// runPhase executes every command of p in order.
func (s *Session) runPhase(ctx context.Context, p phase.Phase) error {
	cmds, err := phase.Commands(p, s.cfg)
	if err != nil {
		return err
	}
	for _, argv := range cmds {
		if err := s.exec(ctx, argv); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// exec runs argv in the container, relays its merged output to the engine's
// stdout and turns a non-zero exit status into a fault.BuildTool error.
func (s *Session) exec(ctx context.Context, argv []string) error {
	cmdline := strings.Join(argv, " ")
	s.logger.Info("generate command", "cmd", cmdline)

	stream, err := s.engine.driver.ExecContainer(ctx, s.handle.ID, &driver.ExecOptions{
		Cmd:          argv,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return err
	}

	if f := s.engine.frames; f != nil && f.start != nil {
		f.start(cmdline)
	}
	_, relayErr := relay.Copy(s.engine.stdout, stream.Chunks())
	if f := s.engine.frames; f != nil && f.end != nil {
		f.end()
	}

	code, err := stream.Wait()
	if err != nil {
		return err
	}
	if code != 0 {
		return fault.Build(cmdline, code)
	}
	if relayErr != nil {
		return fmt.Errorf("relaying output of %s: %w", cmdline, relayErr)
	}
	return nil
}
