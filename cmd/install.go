package cmd

import (
	"github.com/spf13/cobra"

	"github.com/termoshtt/cport/internal/engine"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the configured apt packages into the container",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, "Installing packages", engine.InstallSteps)
	},
}
