// cmd/gonugetpm/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/packagecore/nugetpm/cmd/gonugetpm/cli"
	"github.com/packagecore/nugetpm/cmd/gonugetpm/commands"
)

func main() {
	cli.AddCommand(commands.NewInstallCommand())
	cli.AddCommand(commands.NewUninstallCommand())
	cli.AddCommand(commands.NewUpdateCommand())
	cli.AddCommand(commands.NewReinstallCommand())
	cli.AddCommand(commands.NewRestoreCommand())
	cli.AddCommand(commands.NewListCommand())
	cli.AddCommand(commands.NewSourceCommand())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		os.Exit(130)
	}()

	if err := cli.Execute(); err != nil {
		if err.Error() != "" {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
