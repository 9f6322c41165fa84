package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/packagecore/nugetpm/cmd/gonugetpm/output"
)

// NewListCommand creates "gonugetpm list": prints packages.config entries
// in dependency order (dependencies before dependents), falling back to
// manifest file order if the store hasn't been restored.
func NewListCommand() *cobra.Command {
	f := &projectFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages in dependency order",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(f)
			if err != nil {
				return err
			}

			start := time.Now()
			entries, err := sess.pm.GetInstalledPackagesInDependencyOrder(sess.proj)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				if raw, err := sess.proj.Manifest.Entries(); err == nil && len(raw) > 0 {
					sess.console.Warning("project has not been restored; showing manifest order instead of dependency order")
					entries = raw
				}
			}

			if sess.format == "json" {
				return output.WriteListJSON(sess.console.Output(), output.NewListOutput(sess.proj.Manifest.Path(), entries, start))
			}
			output.RenderList(sess.console, entries)
			return nil
		},
	}

	registerProjectFlags(f, cmd.Flags())
	return cmd
}
