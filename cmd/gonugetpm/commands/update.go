package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/packagecore/nugetpm/projectsystem"
	"github.com/packagecore/nugetpm/resolver"
	"github.com/packagecore/nugetpm/version"
)

// NewUpdateCommand creates "gonugetpm update [id...]". With no ids, every
// installed package is updated to its latest version permitted by policy.
func NewUpdateCommand() *cobra.Command {
	f := &projectFlags{}
	var dependencyBehavior string
	var prerelease bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "update [id...]",
		Short: "Update installed packages to newer versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			behavior, err := parseDependencyBehavior(dependencyBehavior)
			if err != nil {
				return err
			}

			targets, err := parseUpdateTargets(args)
			if err != nil {
				return err
			}

			sess, err := newSession(f)
			if err != nil {
				return err
			}

			start := time.Now()
			ctx := context.Background()
			plan, err := sess.pm.PreviewUpdate(ctx, sess.proj, targets, resolver.Policy{
				DependencyBehavior: behavior,
				IncludePrerelease:  prerelease,
			})
			if err != nil {
				return err
			}

			if dryRun {
				return renderPlan(sess, plan, start)
			}

			if err := sess.pm.Execute(ctx, sess.proj, plan, &projectsystem.ProjectContext{}, "update"); err != nil {
				return err
			}
			return renderPlan(sess, plan, start)
		},
	}

	registerProjectFlags(f, cmd.Flags())
	cmd.Flags().StringVar(&dependencyBehavior, "dependency-behavior", "highest", "Ignore, Lowest, HighestPatch, HighestMinor, or Highest")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Allow prerelease versions")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without applying it")

	return cmd
}

// parseUpdateTargets takes args as a flat list of bare ids ("update Foo Bar"),
// each meaning "latest permitted by policy". An argument that parses as a
// version is rejected; update takes no id+version pairs.
func parseUpdateTargets(args []string) ([]resolver.Target, error) {
	targets := make([]resolver.Target, 0, len(args))
	for _, a := range args {
		if _, err := version.Parse(a); err == nil {
			return nil, fmt.Errorf("update takes package ids, not versions; got %q", a)
		}
		targets = append(targets, resolver.Target{ID: a})
	}
	return targets, nil
}
