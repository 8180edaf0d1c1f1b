package domain

import (
	"path"
	"slices"
)

// RuntimeDependency is a file staged next to the built binary.
// Destination may reference orchestrator variables such as $(BinaryOutputDir).
type RuntimeDependency struct {
	Destination string
	Source      string
}

// PlatformArtifacts lists what one platform descriptor links against.
type PlatformArtifacts struct {
	// Libraries are paths relative to the descriptor's subtree, in link order.
	Libraries []string
	// SystemLibraries are resolved through the linker's search path.
	SystemLibraries []string
	// RuntimeDependencies hold paths relative to the descriptor's subtree as Source.
	RuntimeDependencies []RuntimeDependency
}

// ArtifactTable maps every supported descriptor to its artifacts.
type ArtifactTable map[PlatformDescriptor]PlatformArtifacts

// DefaultArtifacts is the nanodbc artifact table. Archives are listed dependents first.
var DefaultArtifacts = ArtifactTable{
	"windows-x64": {
		Libraries: []string{"lib/nanodbc.lib"},
	},
	"linux-x64": {
		Libraries: []string{
			"lib/libnanodbc.a",
			"lib/installed/libodbc.a",
			"lib/installed/libltdl.a",
		},
	},
	"darwin-x64":   macArtifacts(),
	"darwin-arm64": macArtifacts(),
}

func macArtifacts() PlatformArtifacts {
	return PlatformArtifacts{
		Libraries: []string{
			"lib/libnanodbc.a",
			"lib/installed/libodbc.a",
			"lib/installed/libodbccr.a",
			"lib/installed/libodbcinst.a",
			"lib/installed/libltdl.a",
		},
		SystemLibraries: []string{"iconv"},
	}
}

// Roots are the directories artifact paths are built from.
type Roots struct {
	// ThirdPartyRoot holds one subtree per platform descriptor.
	ThirdPartyRoot string
	// CommonRoot holds the headers shared by every platform.
	CommonRoot string
}

// ArtifactSet is the platform specific part of a build descriptor.
type ArtifactSet struct {
	Descriptor          PlatformDescriptor
	Libraries           []string
	SystemLibraries     []string
	RuntimeDependencies []RuntimeDependency
	Includes            []string
	Diagnostics         []string
}

// Empty reports whether the set links nothing.
func (s ArtifactSet) Empty() bool {
	return len(s.Libraries) == 0 && len(s.SystemLibraries) == 0
}

// Build constructs the artifact set for a descriptor from the default table.
func Build(descriptor PlatformDescriptor, roots Roots) ArtifactSet {
	return DefaultArtifacts.Build(descriptor, roots)
}

// Build constructs the artifact set for a descriptor.
// Unknown descriptors produce an empty set without includes; nothing is guessed.
// Paths are joined with forward slashes and never checked for existence.
func (t ArtifactTable) Build(descriptor PlatformDescriptor, roots Roots) ArtifactSet {
	if !t.Has(descriptor) {
		return ArtifactSet{Descriptor: descriptor}
	}
	entry := t[descriptor]

	base := path.Join(roots.ThirdPartyRoot, descriptor.String())

	set := ArtifactSet{
		Descriptor:      descriptor,
		Libraries:       make([]string, 0, len(entry.Libraries)),
		SystemLibraries: slices.Clone(entry.SystemLibraries),
		Includes:        []string{path.Join(roots.CommonRoot, "include")},
	}
	for _, lib := range entry.Libraries {
		set.Libraries = append(set.Libraries, path.Join(base, lib))
	}
	for _, dep := range entry.RuntimeDependencies {
		set.RuntimeDependencies = append(set.RuntimeDependencies, RuntimeDependency{
			Destination: dep.Destination,
			Source:      path.Join(base, dep.Source),
		})
	}
	return set
}

// Has reports whether the table holds an entry for descriptor.
func (t ArtifactTable) Has(descriptor PlatformDescriptor) bool {
	_, ok := t[descriptor]
	return ok && descriptor != DescriptorUnknown
}

// Missing returns the descriptors of supported platforms the table has no entry for.
func (t ArtifactTable) Missing() []PlatformDescriptor {
	var out []PlatformDescriptor
	for _, p := range SupportedPlatforms() {
		for _, d := range p.Descriptors() {
			if !t.Has(d) {
				out = append(out, d)
			}
		}
	}
	return out
}

// Descriptors returns the table's descriptors sorted.
func (t ArtifactTable) Descriptors() []PlatformDescriptor {
	out := make([]PlatformDescriptor, 0, len(t))
	for d := range t {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}
