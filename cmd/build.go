package cmd

import (
	"github.com/spf13/cobra"

	"github.com/termoshtt/cport/internal/engine"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Configure and build the project inside its container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, "Building", engine.BuildSteps)
	},
}

// runPipeline loads the configuration and runs steps on its container.
func runPipeline(cmd *cobra.Command, title string, steps []engine.Step) error {
	u := newUI()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, rt, err := newEngine(u)
	if err != nil {
		return err
	}

	u.Progress(versionString())
	u.Progress("==> " + title + " " + cfg.Source + " in " + cfg.Image + " (" + rt.String() + ")")

	if err := eng.Run(cmd.Context(), cfg, steps); err != nil {
		return err
	}
	u.Success("Done")
	return nil
}
