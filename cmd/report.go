package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/termoshtt/cport/internal/config"
	"github.com/termoshtt/cport/internal/fault"
	"github.com/termoshtt/cport/internal/ui"
)

// report prints err as the final message of a failed command.
func report(u *ui.UI, err error) {
	logger.Debug("command failed", "kind", fault.KindOf(err), "error", err)
	u.Error(describe(err))
	if hint := hintFor(err); hint != "" {
		u.Progress("  " + hint)
	}
	_, _ = fmt.Fprintf(os.Stderr, "\ncport %s (%s)\n", Version, Commit)
}

// describe renders err according to its fault kind.
func describe(err error) string {
	if errors.Is(err, context.Canceled) {
		return "interrupted"
	}
	fe, ok := fault.As(err)
	if !ok {
		return err.Error()
	}
	switch fe.Kind {
	case fault.Configuration:
		return "invalid configuration: " + err.Error()
	case fault.ContainerFault:
		return fmt.Sprintf("container runtime rejected %s (%d): %s", fe.Op, fe.Code, fe.Message)
	case fault.Transport:
		return "cannot talk to the container runtime: " + err.Error()
	case fault.BuildTool:
		return fmt.Sprintf("%s exited with status %d", fe.Op, fe.Code)
	default:
		return err.Error()
	}
}

// hintFor suggests a next step for common failures.
func hintFor(err error) string {
	fe, ok := fault.As(err)
	if !ok {
		return ""
	}
	switch fe.Kind {
	case fault.Configuration:
		if errors.Is(err, config.ErrNotFound) {
			return "create " + configFlag + " or point --config-toml at an existing file"
		}
	case fault.Transport:
		return "is the docker or podman daemon running?"
	case fault.ContainerFault:
		if fe.Code == 404 {
			return "check that the image exists and can be pulled"
		}
	case fault.BuildTool:
		return "the build tool output above shows the failure"
	}
	return ""
}
