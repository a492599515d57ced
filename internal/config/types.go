package config

import "path/filepath"

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "cport.toml"

const (
	// DefaultGenerator is used for cmake -G when [cmake] generator is unset.
	DefaultGenerator = "Ninja"
	// DefaultBuildDir is used for cmake -B when [cmake] build is unset.
	DefaultBuildDir = "_cport"
)

// Config is the normalized build configuration. It is read-only after Load.
type Config struct {
	// Source is the absolute path of the project root holding CMakeLists.txt.
	// It defaults to the directory of the config file.
	Source string

	// Image is the container image reference, kept verbatim.
	Image string
	// Apt lists packages installed by `cport install`, in the given order.
	Apt []string

	// Generator is passed as cmake -G.
	Generator string
	// Build is the build directory, relative to Source.
	Build string
	// Option is passed as cmake -D{key}={value}.
	Option map[string]string
}

// BuildDir returns the absolute build directory.
func (c *Config) BuildDir() string {
	return filepath.Join(c.Source, c.Build)
}

// fileConfig mirrors the TOML layout of cport.toml.
type fileConfig struct {
	Source string       `toml:"source"`
	CPort  cportSection `toml:"cport"`
	CMake  cmakeSection `toml:"cmake"`
}

type cportSection struct {
	Image string   `toml:"image"`
	Apt   []string `toml:"apt"`
}

type cmakeSection struct {
	Generator string            `toml:"generator"`
	Build     string            `toml:"build"`
	Option    map[string]string `toml:"option"`
}
