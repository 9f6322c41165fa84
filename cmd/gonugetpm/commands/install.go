package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/packagecore/nugetpm/cmd/gonugetpm/output"
	"github.com/packagecore/nugetpm/planner"
	"github.com/packagecore/nugetpm/projectsystem"
	"github.com/packagecore/nugetpm/resolver"
	"github.com/packagecore/nugetpm/version"
)

// NewInstallCommand creates "gonugetpm install <id> [version]".
func NewInstallCommand() *cobra.Command {
	f := &projectFlags{}
	var dependencyBehavior string
	var prerelease bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "install <id> [version]",
		Short: "Install a package into a project's packages.config",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := resolver.Target{ID: args[0]}
			if len(args) == 2 {
				v, err := version.Parse(args[1])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[1], err)
				}
				target.Version = v
			}

			behavior, err := parseDependencyBehavior(dependencyBehavior)
			if err != nil {
				return err
			}

			sess, err := newSession(f)
			if err != nil {
				return err
			}

			start := time.Now()
			ctx := context.Background()
			plan, err := sess.pm.PreviewInstall(ctx, sess.proj, []resolver.Target{target}, resolver.Policy{
				DependencyBehavior: behavior,
				IncludePrerelease:  prerelease,
			})
			if err != nil {
				return err
			}

			if dryRun {
				return renderPlan(sess, plan, start)
			}

			if err := sess.pm.Execute(ctx, sess.proj, plan, &projectsystem.ProjectContext{Direct: true}, "install"); err != nil {
				return err
			}
			return renderPlan(sess, plan, start)
		},
	}

	registerProjectFlags(f, cmd.Flags())
	cmd.Flags().StringVar(&dependencyBehavior, "dependency-behavior", "lowest", "Ignore, Lowest, HighestPatch, HighestMinor, or Highest")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Allow prerelease versions")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without applying it")

	return cmd
}

// renderPlan prints plan as text or JSON per sess.format, shared by every
// subcommand that produces an ActionPlan.
func renderPlan(sess *session, plan *planner.ActionPlan, start time.Time) error {
	if sess.format == "json" {
		return output.WriteJSON(sess.console.Output(), output.NewPlanOutput(sess.proj.Manifest.Path(), plan, start))
	}
	output.RenderPlan(sess.console, plan)
	return nil
}
