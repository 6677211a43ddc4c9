package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/askhq/ask/internal"
)

type versionRow struct {
	Name  string `header:"NAME"`
	Value string `header:"VALUE"`
}

func newVersionCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the ask version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.Table(versionRows())
			return nil
		},
	}
}

func versionRows() []versionRow {
	rows := []versionRow{{Name: "Version", Value: internal.FullVersion()}}
	if internal.Commit != "" {
		rows = append(rows, versionRow{Name: "Commit", Value: internal.Commit})
	}
	if internal.Date != "" {
		rows = append(rows, versionRow{Name: "Built", Value: internal.Date})
	}
	return append(rows, versionRow{Name: "Go", Value: runtime.Version()})
}
