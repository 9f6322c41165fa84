// Package config resolves a NuGet.config hierarchy into the collaborators
// packagemanager.Config needs, reusing cmd/gonuget/config's NuGet.config
// XML model rather than parsing it a second time: source management is
// orthogonal to package resolution, so both binaries read the same file
// format through the same package.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	gonugetconfig "github.com/packagecore/nugetpm/cmd/gonuget/config"
	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/observability"
	"github.com/packagecore/nugetpm/sourcegateway"
)

// ResolveConfigPath finds the effective NuGet.config: explicitPath if set,
// otherwise the first match in the standard hierarchy.
func ResolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	return gonugetconfig.FindConfigFile()
}

// LoadGateway reads configPath (creating an in-memory default config if the
// file doesn't exist) and builds a Gateway with one RepositorySource per
// enabled package source.
func LoadGateway(configPath string, logger observability.Logger) (*sourcegateway.Gateway, error) {
	var cfg *gonugetconfig.NuGetConfig
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			loaded, err := gonugetconfig.LoadNuGetConfig(configPath)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	}
	if cfg == nil {
		cfg = gonugetconfig.NewDefaultConfig()
	}

	gw := sourcegateway.New(logger)
	for _, src := range cfg.GetEnabledPackageSources() {
		repo := core.NewSourceRepository(core.RepositoryConfig{
			Name:      src.Key,
			SourceURL: src.Value,
			Logger:    logger,
		})
		gw.AddSource(sourcegateway.NewRepositorySource(repo))
	}
	return gw, nil
}

// sourceExport is the YAML shape SourcesToYAML produces: a flat name/url
// list, easier to feed into scripts than the full NuGet.config schema.
type sourceExport struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

// SourcesToYAML renders configPath's configured sources as YAML, for
// scripting contexts that would rather not parse NuGet.config XML. A
// missing configPath (no NuGet.config found anywhere in the hierarchy)
// exports the built-in default sources rather than erroring, matching
// LoadGateway's fallback.
func SourcesToYAML(configPath string) ([]byte, error) {
	var cfg *gonugetconfig.NuGetConfig
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			loaded, err := gonugetconfig.LoadNuGetConfig(configPath)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	}
	if cfg == nil {
		cfg = gonugetconfig.NewDefaultConfig()
	}
	if cfg.PackageSources == nil {
		return yaml.Marshal([]sourceExport{})
	}
	out := make([]sourceExport, 0, len(cfg.PackageSources.Add))
	for _, src := range cfg.PackageSources.Add {
		out = append(out, sourceExport{
			Name:    src.Key,
			URL:     src.Value,
			Enabled: !cfg.IsSourceDisabled(src.Key) && src.Enabled != "false",
		})
	}
	return yaml.Marshal(out)
}
