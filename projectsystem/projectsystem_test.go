package projectsystem

import (
	"testing"

	"github.com/packagecore/nugetpm/frameworks"
)

func TestSelectCompatibleContent_PicksNearestFramework(t *testing.T) {
	net45 := frameworks.MustParseFramework("net45")
	netstandard2 := frameworks.MustParseFramework("netstandard2.0")
	net6 := frameworks.MustParseFramework("net6.0")

	available := map[*frameworks.NuGetFramework][]ContentFile{
		net45:        {{Path: "lib/net45/Foo.dll", Group: "lib"}},
		netstandard2: {{Path: "lib/netstandard2.0/Foo.dll", Group: "lib"}},
	}

	files, ok := SelectCompatibleContent(net6, available)
	if !ok {
		t.Fatal("expected a compatible match for net6.0")
	}
	if len(files) != 1 || files[0].Path != "lib/netstandard2.0/Foo.dll" {
		t.Errorf("expected netstandard2.0 content, got %v", files)
	}
}

func TestSelectCompatibleContent_AgnosticContentMatchesAnyTarget(t *testing.T) {
	available := map[*frameworks.NuGetFramework][]ContentFile{
		nil: {{Path: "content/readme.txt", Group: "content"}},
	}
	net6 := frameworks.MustParseFramework("net6.0")

	files, ok := SelectCompatibleContent(net6, available)
	if !ok || len(files) != 1 {
		t.Fatalf("expected agnostic content to match any target, got %v ok=%v", files, ok)
	}
}

func TestSelectCompatibleContent_NoCompatibleFolder(t *testing.T) {
	net35 := frameworks.MustParseFramework("net35")
	available := map[*frameworks.NuGetFramework][]ContentFile{
		frameworks.MustParseFramework("net48"): {{Path: "lib/net48/Foo.dll", Group: "lib"}},
	}
	_, ok := SelectCompatibleContent(net35, available)
	if ok {
		t.Error("expected no compatible match for net35 against a net48-only package")
	}
}

func TestExecutionContext_RecordFileOpened_NilSafe(t *testing.T) {
	var ec *ExecutionContext
	ec.RecordFileOpened("readme.txt") // must not panic

	ec = &ExecutionContext{}
	ec.RecordFileOpened("readme.txt")
	if len(ec.FilesOpened) != 1 || ec.FilesOpened[0] != "readme.txt" {
		t.Errorf("expected readme.txt recorded, got %v", ec.FilesOpened)
	}
}
