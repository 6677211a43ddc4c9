package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/askhq/ask/internal/cmd/cliopts"
)

// configFS is the filesystem used to read the file named by --config-file.
var configFS = afero.NewOsFs()

// parseOptions loads target from the file named by the --config-file flag,
// environment variables that start with envPrefix, and the command line
// flags of cmd.
func parseOptions(cmd *cobra.Command, target interface{}, envPrefix string) error {
	var filename string
	if flag := cmd.Flags().Lookup("config-file"); flag != nil {
		filename = flag.Value.String()
	}

	return cliopts.Load(target, cliopts.Options{
		Filename:  filename,
		FS:        configFS,
		EnvPrefix: envPrefix,
		Flags:     cmd.Flags(),
	})
}
