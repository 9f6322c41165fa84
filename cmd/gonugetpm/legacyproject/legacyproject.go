// Package legacyproject implements projectsystem.ProjectSystem for a
// classic, non-SDK-style .csproj: the project format packages.config
// itself was designed for, where a package's compatible assemblies are
// wired in as literal <Reference Include="..."><HintPath>...</HintPath>
// elements rather than inferred from a <PackageReference>. It uses the
// same struct-tag encoding/xml style as the rest of this tree's config and
// manifest parsing, extended with the Reference/HintPath shape neither of
// those needed.
package legacyproject

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/projectsystem"
)

// rootElement is the minimal <Project> shape a legacy Reference-based
// .csproj actually carries: one or more <ItemGroup> blocks holding
// <Reference> elements.
type rootElement struct {
	XMLName    xml.Name    `xml:"Project"`
	ItemGroups []itemGroup `xml:"ItemGroup"`
}

type itemGroup struct {
	References []reference `xml:"Reference"`
}

// reference is a <Reference Include="Some.Assembly"><HintPath>...</HintPath>
// <NuGetPackageId>...</NuGetPackageId></Reference> element. NuGetPackageId
// is this package's own extension (matching the attribute packages.config
// tooling has historically added to disambiguate which package owns a
// reference) so RemoveReferences doesn't have to guess from the HintPath.
type reference struct {
	Include        string `xml:"Include,attr"`
	HintPath       string `xml:"HintPath,omitempty"`
	NuGetPackageID string `xml:"NuGetPackageId,omitempty"`
}

// System is a ProjectSystem backed by one classic .csproj file and the
// packages/ directory the packages.config it's paired with extracts into.
type System struct {
	projectPath  string
	packagesRoot string

	mu   sync.Mutex
	root *rootElement
}

// New loads projectPath (creating an empty <Project> element in memory if
// the file doesn't exist yet) paired with packagesRoot, the directory
// identities are extracted into, so HintPath can be computed relative to
// the project file.
func New(projectPath, packagesRoot string) (*System, error) {
	root := &rootElement{}
	data, err := os.ReadFile(projectPath)
	if err == nil {
		if err := xml.Unmarshal(data, root); err != nil {
			return nil, fmt.Errorf("parse %s: %w", projectPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", projectPath, err)
	}
	return &System{projectPath: projectPath, packagesRoot: packagesRoot, root: root}, nil
}

// AddReferences adds one <Reference> per content file in the lib or ref
// group (other files are skipped), replacing any existing references this
// identity previously owned.
func (s *System) AddReferences(ctx context.Context, identity core.PackageIdentity, files []projectsystem.ContentFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeOwnedLocked(identity.ID)

	if len(files) == 0 {
		return s.saveLocked()
	}

	installDir := filepath.Join(s.packagesRoot, identity.ID+"."+identity.Version.ToNormalizedString())
	ig := s.findOrCreateGroupLocked()
	for _, f := range files {
		if f.Group != "lib" && f.Group != "ref" {
			continue
		}
		hint, err := filepath.Rel(filepath.Dir(s.projectPath), filepath.Join(installDir, filepath.FromSlash(f.Path)))
		if err != nil {
			hint = filepath.Join(installDir, filepath.FromSlash(f.Path))
		}
		ig.References = append(ig.References, reference{
			Include:        assemblyName(f.Path),
			HintPath:       hint,
			NuGetPackageID: identity.ID,
		})
	}
	return s.saveLocked()
}

// RemoveReferences drops every <Reference> this identity added.
func (s *System) RemoveReferences(ctx context.Context, identity core.PackageIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeOwnedLocked(identity.ID)
	return s.saveLocked()
}

// WriteBindingRedirects is a no-op: generating correct <bindingRedirect>
// entries requires reading each assembly's version and public key token
// out of its PE metadata, which nothing in this tree parses.
func (s *System) WriteBindingRedirects(ctx context.Context) error {
	return nil
}

func (s *System) removeOwnedLocked(id string) {
	for gi := range s.root.ItemGroups {
		ig := &s.root.ItemGroups[gi]
		kept := ig.References[:0]
		for _, r := range ig.References {
			if !strings.EqualFold(r.NuGetPackageID, id) {
				kept = append(kept, r)
			}
		}
		ig.References = kept
	}
}

func (s *System) findOrCreateGroupLocked() *itemGroup {
	if len(s.root.ItemGroups) == 0 {
		s.root.ItemGroups = append(s.root.ItemGroups, itemGroup{})
	}
	return &s.root.ItemGroups[0]
}

func (s *System) saveLocked() error {
	body, err := xml.MarshalIndent(s.root, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", s.projectPath, err)
	}
	content := append([]byte("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"), body...)
	content = append(content, '\n')
	return os.WriteFile(s.projectPath, content, 0o644)
}

// assemblyName strips a content path down to its bare assembly name, e.g.
// "lib/net6.0/Newtonsoft.Json.dll" -> "Newtonsoft.Json".
func assemblyName(path string) string {
	base := path[strings.LastIndexAny(path, "/\\")+1:]
	return strings.TrimSuffix(base, filepath.Ext(base))
}
