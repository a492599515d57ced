package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/termoshtt/cport/internal/driver"
	"github.com/termoshtt/cport/internal/engine"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all build containers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := newUI()

		eng, _, err := newEngine(u)
		if err != nil {
			return err
		}

		containers, err := eng.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(containers) == 0 {
			u.Dim("No build containers")
			return nil
		}

		u.Table([]string{"CONTAINER", "IMAGE", "SOURCE", "BUILD", "STATUS"}, listRows(containers, u.StatusColor))
		return nil
	},
}

// listRows renders one row per container, sorted by source then build dir.
func listRows(containers []driver.ContainerDetails, color func(string) string) [][]string {
	sorted := append([]driver.ContainerDetails(nil), containers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a := engine.IdentityFromLabels(sorted[i].Labels)
		b := engine.IdentityFromLabels(sorted[j].Labels)
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.BuildDir < b.BuildDir
	})

	rows := make([][]string, 0, len(sorted))
	for _, c := range sorted {
		id := engine.IdentityFromLabels(c.Labels)
		rows = append(rows, []string{shortID(c.ID), id.Image, id.Source, id.BuildDir, color(c.State.Status)})
	}
	return rows
}
