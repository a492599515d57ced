package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/go-containerregistry/pkg/name"

	"github.com/termoshtt/cport/internal/fault"
)

// ErrNoImage is returned when [cport] image is missing.
var ErrNoImage = errors.New("cport.image is required")

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

// Load reads, validates and normalizes the TOML config at path.
// All failures are fault.Configuration errors.
func Load(path string, logger *slog.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fault.Config("", fmt.Errorf("%w: %w", ErrNotFound, err))
	}
	if err != nil {
		return nil, fault.Config("", fmt.Errorf("reading %s: %w", path, err))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fault.Config("", fmt.Errorf("resolving path: %w", err))
	}

	cfg, undecoded, err := Parse(data, filepath.Dir(absPath))
	if err != nil {
		return nil, fault.Config("", fmt.Errorf("parsing %s: %w", path, err))
	}
	for _, key := range undecoded {
		logger.Warn("unknown config key", "file", path, "key", key)
	}
	logger.Info("loaded config", "file", path, "source", cfg.Source, "image", cfg.Image, "build", cfg.Build)

	return cfg, nil
}

// Parse decodes cport.toml content. baseDir is the directory holding the
// file; it is the default source and the base for a relative source.
// The returned keys are the ones present in data that cport does not know.
func Parse(data []byte, baseDir string) (*Config, []string, error) {
	var raw fileConfig
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, nil, err
	}

	var undecoded []string
	for _, k := range md.Undecoded() {
		undecoded = append(undecoded, k.String())
	}

	cfg, err := normalize(&raw, baseDir)
	if err != nil {
		return nil, nil, err
	}
	return cfg, undecoded, nil
}

// normalize applies defaults and validates the decoded file.
func normalize(raw *fileConfig, baseDir string) (*Config, error) {
	source, err := resolveSource(raw.Source, baseDir)
	if err != nil {
		return nil, err
	}

	if raw.CPort.Image == "" {
		return nil, ErrNoImage
	}
	if _, err := name.ParseReference(raw.CPort.Image); err != nil {
		return nil, fmt.Errorf("cport.image: %w", err)
	}

	build := raw.CMake.Build
	if build == "" {
		build = DefaultBuildDir
	}
	build, err = cleanBuildDir(build)
	if err != nil {
		return nil, err
	}

	generator := raw.CMake.Generator
	if generator == "" {
		generator = DefaultGenerator
	}

	apt := raw.CPort.Apt
	if apt == nil {
		apt = []string{}
	}
	option := raw.CMake.Option
	if option == nil {
		option = map[string]string{}
	}

	return &Config{
		Source:    source,
		Image:     raw.CPort.Image,
		Apt:       apt,
		Generator: generator,
		Build:     build,
		Option:    option,
	}, nil
}

// resolveSource returns the absolute, symlink-free project root.
func resolveSource(source, baseDir string) (string, error) {
	if source == "" {
		source = baseDir
	} else if !filepath.IsAbs(source) {
		source = filepath.Join(baseDir, source)
	}

	resolved, err := filepath.EvalSymlinks(source)
	if err != nil {
		return "", fmt.Errorf("source: %w", err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("source: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("source: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %s is not a directory", resolved)
	}
	return resolved, nil
}

// cleanBuildDir checks that build stays inside the source tree.
func cleanBuildDir(build string) (string, error) {
	if filepath.IsAbs(build) {
		return "", fmt.Errorf("cmake.build must be relative to source, got %q", build)
	}
	cleaned := filepath.Clean(build)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("cmake.build must not leave the source directory, got %q", build)
	}
	return cleaned, nil
}
