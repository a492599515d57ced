package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/termoshtt/cport/internal/config"
	"github.com/termoshtt/cport/internal/driver/oci"
	"github.com/termoshtt/cport/internal/engine"
	"github.com/termoshtt/cport/internal/logging"
	"github.com/termoshtt/cport/internal/ui"
)

var (
	configFlag string
	logFlags   logging.Flags
	logger     *slog.Logger
)

// Version variables injected at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Built   = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cport",
	Short: "Build CMake projects inside reusable containers",
	Long: `cport builds a CMake project inside a container described by cport.toml.

The container is found by its labels (image, source directory and build
directory) and reused across runs, so packages installed with 'cport install'
and the build tree survive between builds.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(logging.FromFlags(logFlags))
		return nil
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFlag, "config-toml", "f", config.DefaultFile, "path to the cport configuration file")
	pf.BoolVar(&logFlags.Debug, "debug", false, "enable debug logging")
	pf.BoolVarP(&logFlags.Verbose, "verbose", "v", false, "log each step and remote command")
	pf.BoolVarP(&logFlags.Quiet, "quiet", "q", false, "only log errors")
	rootCmd.SetVersionTemplate(fmt.Sprintf("cport version %s\n", Version))
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command with signal handling.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger = logging.New(logging.Config{Level: slog.LevelWarn})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		report(newUI(), err)
		stop()
		os.Exit(1)
	}
}

// newUI creates a UI that writes to stdout and stderr.
func newUI() *ui.UI {
	return ui.New(os.Stdout, os.Stderr)
}

// loadConfig reads the file named by --config-toml.
func loadConfig() (*config.Config, error) {
	return config.Load(configFlag, logger)
}

// newEngine creates the OCI driver and an engine wired to u: remote output
// goes to stdout, progress, frames and runtime warnings to stderr.
func newEngine(u *ui.UI) (*engine.Engine, oci.Runtime, error) {
	d, err := oci.NewOCIDriver(logger)
	if err != nil {
		return nil, 0, err
	}

	eng := engine.New(d, logger)
	eng.SetOutput(os.Stdout, os.Stderr)
	eng.SetProgress(func(msg string) { u.Progress("  " + msg) })
	eng.SetFrames(u.StartFrame, u.EndFrame)

	lockDir, err := engine.DefaultLockDir()
	if err != nil {
		u.Warn("creation lock disabled: " + err.Error())
	} else {
		eng.SetLockDir(lockDir)
	}
	return eng, d.Runtime(), nil
}

// versionString returns a formatted version string for display.
// For dev builds, includes commit and build timestamp.
func versionString() string {
	v := "cport " + Version
	if strings.Contains(Version, "-dev") && Commit != "unknown" {
		v += " (" + Commit
		if Built != "unknown" {
			v += ", " + Built
		}
		v += ")"
	}
	return v
}

// shortID returns the first 12 characters of a container ID.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
