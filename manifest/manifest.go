// Package manifest reads and writes packages.config, the flat,
// per-project list of installed PackageReference entries. Element order is
// the project's dependency order; everything this module doesn't
// recognize on a <package> element is preserved verbatim across a
// read-modify-write cycle.
package manifest

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/pmerr"
	"github.com/packagecore/nugetpm/version"
)

// Entry is one <package> element, decoded into the types the rest of the
// tree works with. AllowedVersions and DevelopmentDependency are the only
// optional attributes the core acts on; every other attribute on the
// original element survives in raw form inside the Manifest and is
// reattached on write.
type Entry struct {
	Identity              core.PackageIdentity
	TargetFramework       *frameworks.NuGetFramework
	AllowedVersions       *version.Range
	DevelopmentDependency bool
}

// Manifest is the parsed, mutable state of one project's packages.config.
// Zero value is not usable; construct with Load.
type Manifest struct {
	path string
	mu   *sync.RWMutex
	raw  []xmlPackage // source of truth; Entries() derives from this
}

var (
	locksMu sync.Mutex
	locks   = map[string]*sync.RWMutex{}
)

// lockFor returns the single mutex guarding path across every Manifest
// instance opened against it, so a concurrent reader and writer of the
// same packages.config on disk serialize against each other even if they
// came from independent Load calls.
func lockFor(path string) *sync.RWMutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	locksMu.Lock()
	defer locksMu.Unlock()
	if mu, ok := locks[abs]; ok {
		return mu
	}
	mu := &sync.RWMutex{}
	locks[abs] = mu
	return mu
}

// Load reads path into a Manifest. A missing file is not an error: it is
// read as an empty manifest, matching a project with no packages.config
// yet (the first install creates it).
func Load(path string) (*Manifest, error) {
	mu := lockFor(path)
	mu.RLock()
	defer mu.RUnlock()
	return loadLocked(path, mu)
}

func loadLocked(path string, mu *sync.RWMutex) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{path: path, mu: mu}, nil
		}
		return nil, pmerr.Wrap(pmerr.ManifestParseError, "", fmt.Sprintf("failed to read %s", path), err)
	}

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, pmerr.Wrap(pmerr.ManifestParseError, "", fmt.Sprintf("malformed manifest XML at %s", path), err)
	}

	for i, p := range doc.Packages {
		if p.ID == "" {
			return nil, pmerr.New(pmerr.ManifestParseError, "",
				fmt.Sprintf("%s: package entry %d is missing an id attribute", path, i))
		}
		if _, err := version.Parse(p.Version); err != nil {
			return nil, pmerr.New(pmerr.ManifestParseError, p.ID,
				fmt.Sprintf("%s: invalid version %q", path, p.Version))
		}
	}

	return &Manifest{path: path, mu: mu, raw: doc.Packages}, nil
}

// Entries returns the manifest's package list in file order.
func (m *Manifest) Entries() ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entriesLocked()
}

func (m *Manifest) entriesLocked() ([]Entry, error) {
	out := make([]Entry, 0, len(m.raw))
	for _, p := range m.raw {
		v, err := version.Parse(p.Version)
		if err != nil {
			return nil, pmerr.New(pmerr.ManifestParseError, p.ID, fmt.Sprintf("invalid version %q", p.Version))
		}
		e := Entry{
			Identity: core.NewPackageIdentity(p.ID, v),
		}
		if p.TargetFramework != "" {
			fw, err := frameworks.ParseFramework(p.TargetFramework)
			if err == nil {
				e.TargetFramework = fw
			}
		}
		if p.AllowedVersions != "" {
			if r, err := version.ParseVersionRange(p.AllowedVersions); err == nil {
				e.AllowedVersions = r
			}
		}
		if p.DevelopmentDependency != "" {
			e.DevelopmentDependency, _ = strconv.ParseBool(p.DevelopmentDependency)
		}
		out = append(out, e)
	}
	return out, nil
}

// Find returns the entry for id, case-insensitively, and whether it exists.
func (m *Manifest) Find(id string) (Entry, bool, error) {
	entries, err := m.Entries()
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Identity.ID, id) {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Upsert adds identity at the end of the manifest, or — if id is already
// present — replaces its id/version/targetFramework in place while
// leaving every other attribute on the element (allowedVersions,
// developmentDependency, anything unknown) untouched. This is the
// canonical attribute set the applier is allowed to set per an update.
func (m *Manifest) Upsert(identity core.PackageIdentity, fw *frameworks.NuGetFramework) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fwName := ""
	if fw != nil {
		fwName = fw.String()
	}

	for i, p := range m.raw {
		if strings.EqualFold(p.ID, identity.ID) {
			m.raw[i].ID = identity.ID
			m.raw[i].Version = identity.Version.ToNormalizedString()
			m.raw[i].TargetFramework = fwName
			return
		}
	}

	m.raw = append(m.raw, xmlPackage{
		ID:              identity.ID,
		Version:         identity.Version.ToNormalizedString(),
		TargetFramework: fwName,
	})
}

// Remove deletes id's entry, case-insensitively. Reports whether anything
// was removed.
func (m *Manifest) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.raw {
		if strings.EqualFold(p.ID, id) {
			m.raw = append(m.raw[:i:i], m.raw[i+1:]...)
			return true
		}
	}
	return false
}

// Save writes the manifest back to disk via a temp-file-then-rename swap,
// the same two-phase pattern cache.DiskCache.Set uses: the file a
// concurrent reader observes is always either the old or the new content,
// never a partial write.
func (m *Manifest) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manifest) saveLocked() error {
	doc := document{Packages: m.raw}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return pmerr.Wrap(pmerr.ManifestParseError, "", "failed to marshal manifest", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pmerr.Wrap(pmerr.ManifestParseError, "", fmt.Sprintf("failed to create %s", dir), err)
	}

	tmp := m.path + fmt.Sprintf(".tmp-%d", os.Getpid())
	content := append([]byte("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"), body...)
	content = append(content, '\n')
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return pmerr.Wrap(pmerr.ManifestParseError, "", fmt.Sprintf("failed to write %s", tmp), err)
	}

	if err := os.Rename(tmp, m.path); err != nil {
		_ = os.Remove(tmp)
		return pmerr.Wrap(pmerr.ManifestParseError, "", fmt.Sprintf("failed to replace %s", m.path), err)
	}
	return nil
}

// Path returns the manifest's backing file path.
func (m *Manifest) Path() string {
	return m.path
}

// IsEmpty reports whether the manifest has no entries.
func (m *Manifest) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.raw) == 0
}
