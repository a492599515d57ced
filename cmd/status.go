package cmd

import (
	"github.com/spf13/cobra"

	"github.com/termoshtt/cport/internal/driver"
	"github.com/termoshtt/cport/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the build container of the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, rt, err := newEngine(u)
		if err != nil {
			return err
		}

		sp := u.StartSpinner("Looking up container")
		container, err := eng.Status(cmd.Context(), cfg)
		sp.Stop()
		if err != nil {
			return err
		}

		id := engine.IdentityOf(cfg)
		u.Header("Build container")
		u.Keyval("image", id.Image)
		u.Keyval("source", id.Source)
		u.Keyval("build", id.BuildDir)
		u.Keyval("runtime", rt.String())

		if container == nil {
			u.Keyval("status", u.StatusColor("no container"))
			return nil
		}

		u.Keyval("container", shortID(container.ID))
		u.Keyval("created", container.Created.Local().Format("2006-01-02 15:04:05"))
		u.Keyval("status", u.StatusColor(container.State.Status))
		if started := startedSince(container.State); started != "" {
			u.Keyval("started", started)
		}
		return nil
	},
}

// startedSince formats when a running container was started.
func startedSince(s driver.ContainerState) string {
	if !s.IsRunning() || s.StartedAt.IsZero() {
		return ""
	}
	return s.StartedAt.Local().Format("2006-01-02 15:04:05")
}
