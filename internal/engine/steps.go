package engine

import (
	"context"
	"fmt"
)

// Step is one unit of the sequential build pipeline.
type Step int

const (
	StepStart Step = iota
	StepProvision
	StepConfigure
	StepBuild
	StepStop
)

// BuildSteps configures and compiles the project.
var BuildSteps = []Step{StepStart, StepConfigure, StepBuild, StepStop}

// InstallSteps installs the configured packages.
var InstallSteps = []Step{StepStart, StepProvision, StepStop}

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepStart:
		return "start"
	case StepProvision:
		return "provision"
	case StepConfigure:
		return "configure"
	case StepBuild:
		return "build"
	case StepStop:
		return "stop"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// run executes the step on s. Stop ignores cancellation of ctx so a
// canceled run still leaves the container stopped.
func (s Step) run(ctx context.Context, sess *Session) error {
	switch s {
	case StepStart:
		return sess.Start(ctx)
	case StepProvision:
		return sess.Provision(ctx)
	case StepConfigure:
		return sess.Configure(ctx)
	case StepBuild:
		return sess.Build(ctx)
	case StepStop:
		return sess.Stop(context.WithoutCancel(ctx))
	default:
		return fmt.Errorf("unknown step %d", int(s))
	}
}
