package config

import (
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	gonugetconfig "github.com/packagecore/nugetpm/cmd/gonuget/config"
)

func writeConfig(t *testing.T, cfg *gonugetconfig.NuGetConfig) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "NuGet.Config")
	if err := gonugetconfig.SaveNuGetConfig(path, cfg); err != nil {
		t.Fatalf("SaveNuGetConfig: %v", err)
	}
	return path
}

func TestSourcesToYAML_ReflectsEnabledAndDisabledSources(t *testing.T) {
	path := writeConfig(t, &gonugetconfig.NuGetConfig{
		PackageSources: &gonugetconfig.PackageSources{
			Add: []gonugetconfig.PackageSource{
				{Key: "nuget.org", Value: "https://api.nuget.org/v3/index.json"},
				{Key: "local", Value: "./local-feed"},
			},
		},
		DisabledPackageSources: &gonugetconfig.DisabledPackageSources{
			Add: []gonugetconfig.DisabledPackageSource{
				{Key: "local", Value: "true"},
			},
		},
	})

	out, err := SourcesToYAML(path)
	if err != nil {
		t.Fatalf("SourcesToYAML: %v", err)
	}

	var decoded []sourceExport
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal YAML: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("sources = %d, want 2: %+v", len(decoded), decoded)
	}
	byName := map[string]sourceExport{}
	for _, s := range decoded {
		byName[s.Name] = s
	}
	if !byName["nuget.org"].Enabled {
		t.Fatalf("nuget.org should be enabled: %+v", byName["nuget.org"])
	}
	if byName["local"].Enabled {
		t.Fatalf("local should be disabled: %+v", byName["local"])
	}
}

func TestSourcesToYAML_MissingConfigFallsBackToDefaults(t *testing.T) {
	out, err := SourcesToYAML(filepath.Join(t.TempDir(), "does-not-exist.config"))
	if err != nil {
		t.Fatalf("SourcesToYAML: %v", err)
	}

	var decoded []sourceExport
	if err := yaml.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("unmarshal YAML: %v", err)
	}
	if len(decoded) == 0 {
		t.Fatal("expected the built-in default sources, got none")
	}
}

func TestResolveConfigPath_PrefersExplicitPath(t *testing.T) {
	if got := ResolveConfigPath("/tmp/explicit/NuGet.Config"); got != "/tmp/explicit/NuGet.Config" {
		t.Fatalf("ResolveConfigPath = %q, want the explicit path", got)
	}
}
