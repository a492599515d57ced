// Package phase turns a build configuration into the exact commands run
// inside the build container.
//
// Everything here is a pure function of its inputs: the same Config always
// yields the same argument vectors, with cmake -D options sorted by key.
package phase

import (
	"fmt"
	"sort"

	"github.com/termoshtt/cport/internal/config"
)

// Phase is a named step executed as remote commands inside the container.
type Phase int

const (
	// Provision installs the configured apt packages.
	Provision Phase = iota
	// Configure generates the build files with cmake.
	Configure
	// Build compiles with cmake --build.
	Build
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Provision:
		return "provision"
	case Configure:
		return "configure"
	case Build:
		return "build"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

const (
	// Tool is the native build tool binary.
	Tool = "cmake"
	// PackageManager installs provision packages.
	PackageManager = "apt"
)

// Commands returns the argument vectors of phase p, in execution order.
// Configure and Build produce one vector, Provision produces two
// (index refresh, then install).
func Commands(p Phase, cfg *config.Config) ([][]string, error) {
	switch p {
	case Provision:
		return ProvisionArgs(cfg), nil
	case Configure:
		return [][]string{ConfigureArgs(cfg)}, nil
	case Build:
		return [][]string{BuildArgs(cfg)}, nil
	default:
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
}

// ConfigureArgs returns
// cmake -B<build> -H<source> -G<generator> -D<key>=<value>...
func ConfigureArgs(cfg *config.Config) []string {
	args := []string{
		Tool,
		"-B" + cfg.BuildDir(),
		"-H" + cfg.Source,
		"-G" + cfg.Generator,
	}
	for _, k := range sortedKeys(cfg.Option) {
		args = append(args, "-D"+k+"="+cfg.Option[k])
	}
	return args
}

// BuildArgs returns cmake --build <build>.
func BuildArgs(cfg *config.Config) []string {
	return []string{Tool, "--build", cfg.BuildDir()}
}

// ProvisionArgs returns `apt update` followed by `apt install -y <pkgs>`.
// Packages keep the order given in the config.
func ProvisionArgs(cfg *config.Config) [][]string {
	install := []string{PackageManager, "install", "-y"}
	install = append(install, cfg.Apt...)
	return [][]string{
		{PackageManager, "update"},
		install,
	}
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
