package applier

import (
	"archive/zip"
	"fmt"
	"strings"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/packaging"
	"github.com/packagecore/nugetpm/pmerr"
	"github.com/packagecore/nugetpm/projectsystem"
)

// contentByFramework groups a package's lib/ and ref/ files by the
// framework folder they live under. Files directly under lib/ or ref/
// with no framework segment (framework-agnostic content) are keyed by
// nil. Monikers are parsed once and cached so every file under the same
// folder shares one *frameworks.NuGetFramework pointer — required for
// projectsystem.SelectCompatibleContent's map lookup by pointer identity.
func contentByFramework(reader *packaging.PackageReader) map[*frameworks.NuGetFramework][]projectsystem.ContentFile {
	cache := make(map[string]*frameworks.NuGetFramework)
	out := make(map[*frameworks.NuGetFramework][]projectsystem.ContentFile)

	add := func(files []*zip.File, group string) {
		for _, f := range files {
			if strings.HasSuffix(f.Name, "/") {
				continue
			}
			parts := strings.SplitN(f.Name, "/", 3)
			if len(parts) < 3 {
				out[nil] = append(out[nil], projectsystem.ContentFile{Path: f.Name, Group: group})
				continue
			}
			moniker := parts[1]
			fw, ok := cache[moniker]
			if !ok {
				parsed, err := frameworks.ParseFramework(moniker)
				if err != nil {
					continue
				}
				fw = parsed
				cache[moniker] = fw
			}
			out[fw] = append(out[fw], projectsystem.ContentFile{Path: f.Name, Group: group})
		}
	}

	add(reader.GetLibFiles(), "lib")
	add(reader.GetRefFiles(), "ref")
	return out
}

// selectContent narrows available down to the files target should
// receive. Framework-agnostic content (keyed by nil) always rides along.
// Framework-specific content additionally has to clear
// projectsystem.SelectCompatibleContent; if none does and the package has
// any framework-specific content at all, the install fails with
// NoCompatibleItems.
func selectContent(identity core.PackageIdentity, target *frameworks.NuGetFramework, available map[*frameworks.NuGetFramework][]projectsystem.ContentFile) ([]projectsystem.ContentFile, error) {
	agnostic := available[nil]

	specific := make(map[*frameworks.NuGetFramework][]projectsystem.ContentFile, len(available))
	for fw, files := range available {
		if fw != nil {
			specific[fw] = files
		}
	}
	if len(specific) == 0 {
		return agnostic, nil
	}

	selected, ok := projectsystem.SelectCompatibleContent(target, specific)
	if !ok {
		return nil, pmerr.New(pmerr.NoCompatibleItems, identity.ID,
			fmt.Sprintf("no content compatible with %s", frameworkString(target)))
	}
	return append(append([]projectsystem.ContentFile{}, agnostic...), selected...), nil
}

func frameworkString(fw *frameworks.NuGetFramework) string {
	if fw == nil {
		return "(none)"
	}
	return fw.String()
}
