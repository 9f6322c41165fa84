package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/packagecore/nugetpm/projectsystem"
)

// NewUninstallCommand creates "gonugetpm uninstall <id>".
func NewUninstallCommand() *cobra.Command {
	f := &projectFlags{}
	var removeDependencies bool
	var force bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "uninstall <id>",
		Short: "Remove a package from a project's packages.config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(f)
			if err != nil {
				return err
			}

			start := time.Now()
			ctx := context.Background()
			plan, err := sess.pm.PreviewUninstall(ctx, sess.proj, args[0], removeDependencies, force)
			if err != nil {
				return err
			}

			if dryRun {
				return renderPlan(sess, plan, start)
			}

			uctx := &projectsystem.ProjectContext{}
			if err := sess.pm.Execute(ctx, sess.proj, plan, uctx, "uninstall"); err != nil {
				return err
			}
			return renderPlan(sess, plan, start)
		},
	}

	registerProjectFlags(f, cmd.Flags())
	cmd.Flags().BoolVar(&removeDependencies, "remove-dependencies", false, "Also remove dependencies no longer needed by anything else")
	cmd.Flags().BoolVar(&force, "force", false, "Remove even if another installed package still depends on it")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without applying it")

	return cmd
}
