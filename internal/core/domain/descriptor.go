package domain

import (
	"errors"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// BuildDescriptor is everything an orchestrator needs to compile and link a module for one platform.
// It is a value object: accessors return copies and nothing mutates it after Emit.
type BuildDescriptor struct {
	module              string
	platform            TargetPlatform
	descriptor          PlatformDescriptor
	libraries           []string
	systemLibraries     []string
	runtimeDependencies []RuntimeDependency
	artifactIncludes    []string
	publicIncludes      []string
	privateIncludes     []string
	definitions         []Definition
	publicDependencies  []string
	privateDependencies []string
	enableExceptions    bool
	pchUsage            string
	diagnostics         []string
}

// Emit merges an artifact set with the static configuration.
// Link order is taken from artifacts unchanged; the capability definition is always present.
func Emit(artifacts ArtifactSet, static StaticConfig) BuildDescriptor {
	return emit("", artifacts, static)
}

func emit(platform TargetPlatform, artifacts ArtifactSet, static StaticConfig) BuildDescriptor {
	return BuildDescriptor{
		module:              static.Module,
		platform:            platform,
		descriptor:          artifacts.Descriptor,
		libraries:           slices.Clone(artifacts.Libraries),
		systemLibraries:     slices.Clone(artifacts.SystemLibraries),
		runtimeDependencies: slices.Clone(artifacts.RuntimeDependencies),
		artifactIncludes:    slices.Clone(artifacts.Includes),
		publicIncludes:      slices.Clone(static.PublicIncludes),
		privateIncludes:     slices.Clone(static.PrivateIncludes),
		definitions:         mergeDefinitions(static.Definitions, static.Capability),
		publicDependencies:  slices.Clone(static.PublicDependencies),
		privateDependencies: slices.Clone(static.PrivateDependencies),
		enableExceptions:    static.EnableExceptions,
		pchUsage:            static.PCHUsage,
		diagnostics:         slices.Clone(artifacts.Diagnostics),
	}
}

func mergeDefinitions(defs []Definition, capability Definition) []Definition {
	if capability.Name == "" {
		capability = CapabilityDefinition
	}
	out := make([]Definition, 0, len(defs)+1)
	seen := make(map[string]int, len(defs)+1)
	for _, d := range defs {
		if d.Name == capability.Name {
			continue
		}
		if i, ok := seen[d.Name]; ok {
			out[i] = d
			continue
		}
		seen[d.Name] = len(out)
		out = append(out, d)
	}
	out = append(out, capability)
	slices.SortFunc(out, func(a, b Definition) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// ResolveModule runs the resolver, builder and emitter for one platform.
// For an unsupported platform, or a descriptor missing from the artifact table, the returned
// descriptor links nothing, carries a diagnostic, and the error wraps ErrUnsupportedPlatform.
func ResolveModule(cfg ModuleConfig, platform TargetPlatform, preferAltArch bool) (BuildDescriptor, error) {
	descriptor, err := Resolve(platform, preferAltArch)

	table := cfg.Table()
	artifacts := table.Build(descriptor, cfg.Roots())
	switch {
	case err != nil:
		artifacts.Diagnostics = append(artifacts.Diagnostics, "unknown platform: "+string(platform))
	case !table.Has(descriptor):
		artifacts.Diagnostics = append(artifacts.Diagnostics, "no artifacts for descriptor "+descriptor.String())
		err = zerr.With(zerr.Wrap(ErrUnsupportedPlatform, "no artifacts for descriptor"), "descriptor", descriptor.String())
	}

	return emit(platform, artifacts, cfg.StaticConfig()), err
}

// IsUnsupported reports whether err stems from an unsupported platform.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedPlatform)
}

// Module returns the module name.
func (d BuildDescriptor) Module() string { return d.module }

// Platform returns the requested platform.
func (d BuildDescriptor) Platform() TargetPlatform { return d.platform }

// Descriptor returns the resolved platform descriptor.
func (d BuildDescriptor) Descriptor() PlatformDescriptor { return d.descriptor }

// Supported reports whether a real artifact subtree was selected and it links something.
func (d BuildDescriptor) Supported() bool {
	if d.descriptor == "" || d.descriptor == DescriptorUnknown {
		return false
	}
	return len(d.libraries) > 0 || len(d.systemLibraries) > 0
}

// Libraries returns the library paths in link order.
func (d BuildDescriptor) Libraries() []string { return slices.Clone(d.libraries) }

// SystemLibraries returns libraries resolved by the linker's search path.
func (d BuildDescriptor) SystemLibraries() []string { return slices.Clone(d.systemLibraries) }

// RuntimeDependencies returns files staged next to the binary.
func (d BuildDescriptor) RuntimeDependencies() []RuntimeDependency {
	return slices.Clone(d.runtimeDependencies)
}

// Includes returns every include directory: artifact includes, then public, then private module includes.
func (d BuildDescriptor) Includes() []string {
	out := make([]string, 0, len(d.artifactIncludes)+len(d.publicIncludes)+len(d.privateIncludes))
	out = append(out, d.artifactIncludes...)
	out = append(out, d.publicIncludes...)
	return append(out, d.privateIncludes...)
}

// PublicIncludes returns include directories exported to dependent modules.
func (d BuildDescriptor) PublicIncludes() []string { return slices.Clone(d.publicIncludes) }

// PrivateIncludes returns include directories visible only to the module itself.
// Third-party headers come first.
func (d BuildDescriptor) PrivateIncludes() []string {
	out := make([]string, 0, len(d.artifactIncludes)+len(d.privateIncludes))
	out = append(out, d.artifactIncludes...)
	return append(out, d.privateIncludes...)
}

// Definitions returns the preprocessor definitions sorted by name.
func (d BuildDescriptor) Definitions() []Definition { return slices.Clone(d.definitions) }

// PublicDependencies returns the public module dependency names.
func (d BuildDescriptor) PublicDependencies() []string { return slices.Clone(d.publicDependencies) }

// PrivateDependencies returns the private module dependency names.
func (d BuildDescriptor) PrivateDependencies() []string { return slices.Clone(d.privateDependencies) }

// EnableExceptions reports whether the module compiles with exceptions.
func (d BuildDescriptor) EnableExceptions() bool { return d.enableExceptions }

// PCHUsage returns the precompiled header mode.
func (d BuildDescriptor) PCHUsage() string { return d.pchUsage }

// Diagnostics returns human readable problems found while resolving.
func (d BuildDescriptor) Diagnostics() []string { return slices.Clone(d.diagnostics) }
