// Package commands implements the gonugetpm cobra subcommands: install,
// uninstall, update, reinstall, restore, list, and source. Each is a thin wrapper
// translating flags into packagemanager calls and rendering the resulting
// plan through cmd/gonugetpm/output, the structure cmd/gonuget/commands
// uses for its own subcommands.
package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/packagecore/nugetpm/cmd/gonugetpm/config"
	"github.com/packagecore/nugetpm/cmd/gonugetpm/legacyproject"
	"github.com/packagecore/nugetpm/cmd/gonugetpm/output"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/manifest"
	"github.com/packagecore/nugetpm/observability"
	"github.com/packagecore/nugetpm/packagemanager"
	"github.com/packagecore/nugetpm/resolver"
	"github.com/packagecore/nugetpm/store"
)

// projectFlags are the flags every package-operating subcommand shares.
type projectFlags struct {
	project     string
	packagesDir string
	framework   string
	configFile  string
	format      string
	verbose     bool
}

func registerProjectFlags(f *projectFlags, flags interface {
	StringVar(p *string, name string, value string, usage string)
	BoolVar(p *bool, name string, value bool, usage string)
}) {
	flags.StringVar(&f.project, "project", "", "Path to the project's .csproj file (required)")
	flags.StringVar(&f.packagesDir, "packages-dir", "", "Directory packages are extracted into (default: packages/ next to the project)")
	flags.StringVar(&f.framework, "framework", "net472", "Target framework moniker the project builds against")
	flags.StringVar(&f.configFile, "configfile", "", "NuGet.config file to read package sources from")
	flags.StringVar(&f.format, "format", "text", "Output format: text or json")
	flags.BoolVar(&f.verbose, "verbose", false, "Enable diagnostic logging")
}

// session bundles everything a subcommand needs once flags are parsed:
// the façade, the Project it should act on, and the console to render
// through.
type session struct {
	pm      *packagemanager.PackageManager
	proj    *packagemanager.Project
	console *output.Console
	format  string
}

func newSession(f *projectFlags) (*session, error) {
	if f.project == "" {
		return nil, fmt.Errorf("--project is required")
	}

	fw, err := frameworks.ParseFramework(f.framework)
	if err != nil {
		return nil, fmt.Errorf("invalid --framework %q: %w", f.framework, err)
	}

	projectDir := filepath.Dir(f.project)
	manifestPath := filepath.Join(projectDir, "packages.config")
	packagesDir := f.packagesDir
	if packagesDir == "" {
		packagesDir = filepath.Join(projectDir, "packages")
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	projSys, err := legacyproject.New(f.project, packagesDir)
	if err != nil {
		return nil, err
	}

	logger := observability.NewNullLogger()
	if f.verbose {
		logger = observability.NewDefaultLogger()
	}

	gw, err := config.LoadGateway(config.ResolveConfigPath(f.configFile), logger)
	if err != nil {
		return nil, err
	}

	pm := packagemanager.New(packagemanager.Config{
		Gateway: gw,
		Store:   store.New(packagesDir),
		Logger:  logger,
	})

	return &session{
		pm: pm,
		proj: &packagemanager.Project{
			Manifest:        m,
			ProjectSystem:   projSys,
			TargetFramework: fw,
		},
		console: output.DefaultConsole(),
		format:  strings.ToLower(f.format),
	}, nil
}

// parseDependencyBehavior maps a CLI flag value to resolver.DependencyBehavior.
func parseDependencyBehavior(s string) (resolver.DependencyBehavior, error) {
	switch strings.ToLower(s) {
	case "", "lowest":
		return resolver.Lowest, nil
	case "ignore":
		return resolver.Ignore, nil
	case "highestpatch":
		return resolver.HighestPatch, nil
	case "highestminor":
		return resolver.HighestMinor, nil
	case "highest":
		return resolver.Highest, nil
	default:
		return 0, fmt.Errorf("unknown dependency behavior %q", s)
	}
}
