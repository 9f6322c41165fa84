package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	gonugetcommands "github.com/packagecore/nugetpm/cmd/gonuget/commands"
	gonugetoutput "github.com/packagecore/nugetpm/cmd/gonuget/output"
	"github.com/packagecore/nugetpm/cmd/gonugetpm/config"
)

// NewSourceCommand exposes NuGet.config source management as
// "gonugetpm source add|list|remove|enable|disable|update". Source
// management doesn't touch resolution state, so this delegates outright to
// cmd/gonuget/commands' existing implementation rather than rebuilding
// NuGet.config XML editing a second time. "export" is the one subcommand
// unique to this binary, for scripts that would rather consume YAML than
// NuGet.config XML.
func NewSourceCommand() *cobra.Command {
	cmd := gonugetcommands.GetSourceCommand()
	console := gonugetoutput.DefaultConsole()
	gonugetcommands.RegisterSourceSubcommands(console)
	cmd.AddCommand(newSourceExportCommand())
	return cmd
}

func newSourceExportCommand() *cobra.Command {
	var configFile string

	export := &cobra.Command{
		Use:   "export",
		Short: "Print configured package sources as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := config.SourcesToYAML(config.ResolveConfigPath(configFile))
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
	export.Flags().StringVar(&configFile, "configfile", "", "NuGet.config file to export (default: standard hierarchy)")
	return export
}
