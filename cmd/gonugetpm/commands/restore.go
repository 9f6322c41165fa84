package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRestoreCommand creates "gonugetpm restore": materializes every
// packages.config entry into the store without touching the manifest,
// the CI/clean-checkout counterpart to install.
func NewRestoreCommand() *cobra.Command {
	f := &projectFlags{}

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore every package listed in packages.config into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(f)
			if err != nil {
				return err
			}

			entries, err := sess.proj.Manifest.Entries()
			if err != nil {
				return err
			}

			ctx := context.Background()
			for _, e := range entries {
				if err := sess.pm.RestorePackage(ctx, e.Identity); err != nil {
					return err
				}
				sess.console.Success("Restored %s %s", e.Identity.ID, e.Identity.Version.String())
			}
			if len(entries) == 0 {
				sess.console.Println("Nothing to restore.")
			}
			return nil
		},
	}

	registerProjectFlags(f, cmd.Flags())
	return cmd
}
