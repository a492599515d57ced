package oci

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/termoshtt/cport/internal/fault"
)

// Runtime identifies the container runtime.
type Runtime int

const (
	RuntimeDocker Runtime = iota
	RuntimePodman
)

// String returns the runtime name.
func (r Runtime) String() string {
	switch r {
	case RuntimePodman:
		return "podman"
	default:
		return "docker"
	}
}

// RuntimeEnv selects the runtime explicitly.
const RuntimeEnv = "CPORT_RUNTIME"

// OCIDriver implements driver.Driver using docker or podman CLI commands.
type OCIDriver struct {
	helper  *Helper
	runtime Runtime
	logger  *slog.Logger
}

// NewOCIDriver creates an OCIDriver by auto-detecting the container runtime.
// Detection failures are fault.Transport errors.
func NewOCIDriver(logger *slog.Logger) (*OCIDriver, error) {
	rt, cmd, err := detectRuntime()
	if err != nil {
		return nil, fault.TransportErr("", err)
	}
	logger.Info("detected container runtime", "runtime", rt.String(), "command", cmd)
	return &OCIDriver{
		helper:  NewHelper(cmd, logger),
		runtime: rt,
		logger:  logger,
	}, nil
}

// Runtime returns the detected container runtime.
func (d *OCIDriver) Runtime() Runtime {
	return d.runtime
}

// detectRuntime checks for an available container runtime.
// Priority: CPORT_RUNTIME env > docker > podman.
func detectRuntime() (Runtime, string, error) {
	if env := os.Getenv(RuntimeEnv); env != "" {
		switch strings.ToLower(env) {
		case "docker":
			cmd, err := findResponsiveRuntime("docker")
			if err != nil {
				return 0, "", fmt.Errorf("%s=docker but docker is not available: %w", RuntimeEnv, err)
			}
			return RuntimeDocker, cmd, nil
		case "podman":
			cmd, err := findResponsiveRuntime("podman")
			if err != nil {
				return 0, "", fmt.Errorf("%s=podman but podman is not available: %w", RuntimeEnv, err)
			}
			return RuntimePodman, cmd, nil
		default:
			return 0, "", fmt.Errorf("%s=%q is not supported (use docker or podman)", RuntimeEnv, env)
		}
	}

	dockerCmd, dockerErr := findResponsiveRuntime("docker")
	if dockerErr == nil {
		return RuntimeDocker, dockerCmd, nil
	}
	podmanCmd, podmanErr := findResponsiveRuntime("podman")
	if podmanErr == nil {
		return RuntimePodman, podmanCmd, nil
	}

	return 0, "", fmt.Errorf("no container runtime found:\n  docker: %v\n  podman: %v", dockerErr, podmanErr)
}

// findResponsiveRuntime checks if a runtime command exists on PATH and responds to `version`.
func findResponsiveRuntime(name string) (string, error) {
	cmd, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found on PATH: %w", name, err)
	}

	out, err := exec.Command(cmd, "version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s not responsive: %w: %s", name, err, string(out))
	}
	return cmd, nil
}

// LabelFilter returns the `--filter` value matching a label. An empty value
// matches any container carrying the key.
func LabelFilter(key, value string) string {
	if value == "" {
		return "label=" + key
	}
	return "label=" + key + "=" + value
}
