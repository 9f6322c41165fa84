// Package store materializes and removes extracted package contents in a
// solution-scoped packages/ directory, one subdirectory per identity
// (packaging.PackagePathResolver's V2, side-by-side layout). A single
// LocalFolderStore is shared by every project in a solution; its
// reference counts track how many projects currently list an identity so
// a store directory is only deleted once nothing references it anymore.
package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/frameworks"
	"github.com/packagecore/nugetpm/packaging"
	"github.com/packagecore/nugetpm/pmerr"
)

// FolderStore is the contract the applier and packagemanager façade use to
// touch the shared package store. LocalFolderStore is the only
// implementation; the interface exists so the applier can be tested
// without a filesystem.
type FolderStore interface {
	Path(identity core.PackageIdentity) string
	IsInstalled(identity core.PackageIdentity) bool
	Install(ctx context.Context, identity core.PackageIdentity, fetch func(context.Context) ([]byte, error)) error
	Acquire(identity core.PackageIdentity)
	ReleaseAndMaybeDelete(ctx context.Context, identity core.PackageIdentity) (deleted bool, err error)
	OpenNuspec(identity core.PackageIdentity) (*packaging.Nuspec, error)
	CompatibleFrameworks(identity core.PackageIdentity) ([]*frameworks.NuGetFramework, error)
}

// LocalFolderStore is a FolderStore backed by a local directory.
type LocalFolderStore struct {
	resolver *packaging.PackagePathResolver

	countsMu sync.Mutex
	counts   map[string]int

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a LocalFolderStore rooted at root (the solution's packages/
// directory).
func New(root string) *LocalFolderStore {
	return &LocalFolderStore{
		resolver: packaging.NewPackagePathResolver(root, true),
		counts:   make(map[string]int),
		locks:    make(map[string]*sync.Mutex),
	}
}

func key(identity core.PackageIdentity) string {
	return strings.ToLower(identity.ID) + "|" + identity.Version.ToNormalizedString()
}

func (s *LocalFolderStore) lockFor(k string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if mu, ok := s.locks[k]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	s.locks[k] = mu
	return mu
}

func (s *LocalFolderStore) pkgIdentity(identity core.PackageIdentity) *packaging.PackageIdentity {
	return &packaging.PackageIdentity{ID: identity.ID, Version: identity.Version}
}

// Path returns the directory identity is (or would be) extracted into.
func (s *LocalFolderStore) Path(identity core.PackageIdentity) string {
	return s.resolver.GetInstallPath(s.pkgIdentity(identity))
}

// IsInstalled reports whether identity's store directory exists.
func (s *LocalFolderStore) IsInstalled(identity core.PackageIdentity) bool {
	info, err := os.Stat(s.Path(identity))
	return err == nil && info.IsDir()
}

// Install extracts identity's package contents if not already present.
// fetch is only invoked when the directory doesn't already exist, so a
// second project installing an already-materialized identity never hits
// the network.
func (s *LocalFolderStore) Install(ctx context.Context, identity core.PackageIdentity, fetch func(context.Context) ([]byte, error)) error {
	k := key(identity)
	mu := s.lockFor(k)
	mu.Lock()
	defer mu.Unlock()

	if s.IsInstalled(identity) {
		return nil
	}

	data, err := fetch(ctx)
	if err != nil {
		return pmerr.Wrap(pmerr.PackageNotFound, identity.ID, "failed to fetch package contents", err)
	}

	extractCtx := packaging.DefaultExtractionContext()
	extractCtx.PackageSaveMode = packaging.PackageSaveModeDefaultV2 | packaging.PackageSaveModeNuspec

	if _, err := packaging.ExtractPackageV2(ctx, "", bytes.NewReader(data), s.resolver, extractCtx); err != nil {
		return pmerr.Wrap(pmerr.PackageNotFound, identity.ID, "failed to extract package", err)
	}
	return nil
}

// Acquire records that one more project now references identity.
func (s *LocalFolderStore) Acquire(identity core.PackageIdentity) {
	k := key(identity)
	s.countsMu.Lock()
	defer s.countsMu.Unlock()
	s.counts[k]++
}

// ReleaseAndMaybeDelete records that one fewer project references
// identity, and deletes its store directory once the count reaches zero.
// deleted reports whether this call actually removed the directory.
func (s *LocalFolderStore) ReleaseAndMaybeDelete(ctx context.Context, identity core.PackageIdentity) (bool, error) {
	k := key(identity)

	s.countsMu.Lock()
	s.counts[k]--
	remaining := s.counts[k]
	if remaining <= 0 {
		delete(s.counts, k)
	}
	s.countsMu.Unlock()

	if remaining > 0 {
		return false, nil
	}

	mu := s.lockFor(k)
	mu.Lock()
	defer mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, pmerr.Wrap(pmerr.Cancelled, identity.ID, "uninstall cancelled before store cleanup", err)
	}
	if err := os.RemoveAll(s.Path(identity)); err != nil {
		return false, pmerr.Wrap(pmerr.PackageNotFound, identity.ID, "failed to remove store directory", err)
	}
	return true, nil
}

// OpenNuspec reads the extracted .nuspec for identity.
func (s *LocalFolderStore) OpenNuspec(identity core.PackageIdentity) (*packaging.Nuspec, error) {
	name := s.resolver.GetManifestFileName(s.pkgIdentity(identity))
	full := filepath.Join(s.Path(identity), name)
	f, err := os.Open(full)
	if err != nil {
		return nil, pmerr.Wrap(pmerr.PackageNotFound, identity.ID, "package is not restored", err)
	}
	defer func() { _ = f.Close() }()
	return packaging.ParseNuspec(f)
}

// CompatibleFrameworks lists the frameworks identity ships lib/ content
// for, parsed from the lib/<tfm>/ subdirectory names left by extraction.
func (s *LocalFolderStore) CompatibleFrameworks(identity core.PackageIdentity) ([]*frameworks.NuGetFramework, error) {
	libDir := filepath.Join(s.Path(identity), "lib")
	entries, err := os.ReadDir(libDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []*frameworks.NuGetFramework
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		fw, err := frameworks.ParseFramework(e.Name())
		if err != nil {
			continue
		}
		out = append(out, fw)
	}
	return out, nil
}
