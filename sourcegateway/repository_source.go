package sourcegateway

import (
	"context"
	"io"

	"github.com/packagecore/nugetpm/core"
	"github.com/packagecore/nugetpm/version"
)

// RepositorySource adapts a *core.SourceRepository (the v2/v3 protocol
// client, with its own auth, HTTP, and cache layers) to Source. It is the
// only Source implementation that talks to a real feed; tests use their own
// in-memory fakes instead of standing up an HTTP server.
type RepositorySource struct {
	repo *core.SourceRepository
}

// NewRepositorySource wraps repo as a Source.
func NewRepositorySource(repo *core.SourceRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

func (s *RepositorySource) Name() string {
	return s.repo.Name()
}

// ListVersions fetches the raw version strings from the feed and parses
// each one, skipping any the feed published that don't parse as a NuGet
// version rather than failing the whole call.
func (s *RepositorySource) ListVersions(ctx context.Context, id string) ([]*version.NuGetVersion, error) {
	raw, err := s.repo.ListVersions(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	out := make([]*version.NuGetVersion, 0, len(raw))
	for _, v := range raw {
		parsed, err := version.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, parsed)
	}
	return out, nil
}

// GetDependencyInfo fetches ProtocolMetadata for id@v and converts its
// string-keyed dependency groups to core's parsed-VersionRange shape.
func (s *RepositorySource) GetDependencyInfo(ctx context.Context, id string, v *version.NuGetVersion) (*DependencyInfo, error) {
	meta, err := s.repo.GetMetadata(ctx, nil, id, v.String())
	if err != nil {
		return nil, err
	}

	groups := make([]core.PackageDependencyGroup, 0, len(meta.Dependencies))
	for _, g := range meta.Dependencies {
		deps := make([]core.PackageDependency, 0, len(g.Dependencies))
		for _, d := range g.Dependencies {
			var rng *version.Range
			if d.Range != "" {
				rng, err = version.ParseVersionRange(d.Range)
				if err != nil {
					rng = nil
				}
			}
			deps = append(deps, core.PackageDependency{ID: d.ID, VersionRange: rng})
		}
		groups = append(groups, core.PackageDependencyGroup{TargetFramework: g.TargetFramework, Dependencies: deps})
	}

	identity := core.PackageIdentity{ID: id, Version: v}
	return &DependencyInfo{Identity: identity, Listed: true, Groups: groups}, nil
}

// FetchBytes downloads id@v and buffers the stream: the store writes nupkgs
// as a single []byte payload, same as every other Source implementation.
func (s *RepositorySource) FetchBytes(ctx context.Context, id string, v *version.NuGetVersion) ([]byte, error) {
	rc, err := s.repo.DownloadPackage(ctx, nil, id, v.String())
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
