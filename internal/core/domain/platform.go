package domain

import (
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// TargetPlatform identifies the operating system a module is built for.
// Values outside the known constants are carried verbatim so they can be reported.
type TargetPlatform string

const (
	// PlatformWin64 is 64-bit Windows.
	PlatformWin64 TargetPlatform = "Win64"
	// PlatformLinux is Linux.
	PlatformLinux TargetPlatform = "Linux"
	// PlatformMac is macOS.
	PlatformMac TargetPlatform = "Mac"
)

// Arch is a CPU architecture tag as it appears in a platform descriptor.
type Arch string

const (
	// ArchX64 is x86-64.
	ArchX64 Arch = "x64"
	// ArchARM64 is 64-bit ARM.
	ArchARM64 Arch = "arm64"
)

// PlatformDescriptor is the canonical "<os>-<arch>" tag selecting a pre-built artifact subtree.
type PlatformDescriptor string

// DescriptorUnknown is returned for platforms outside the supported set.
const DescriptorUnknown PlatformDescriptor = "unknown"

func (d PlatformDescriptor) String() string {
	return string(d)
}

// platformArch lists the architectures a platform ships artifacts for.
// alt is empty when the platform has a single architecture.
type platformArch struct {
	os   string
	arch Arch
	alt  Arch
}

var platforms = map[TargetPlatform]platformArch{
	PlatformWin64: {os: "windows", arch: ArchX64},
	PlatformLinux: {os: "linux", arch: ArchX64},
	PlatformMac:   {os: "darwin", arch: ArchX64, alt: ArchARM64},
}

var platformAliases = map[string]TargetPlatform{
	"win64":   PlatformWin64,
	"windows": PlatformWin64,
	"linux":   PlatformLinux,
	"mac":     PlatformMac,
	"macos":   PlatformMac,
	"darwin":  PlatformMac,
}

// ParsePlatform maps a user supplied platform name onto a TargetPlatform.
// Unrecognized names are returned unchanged.
func ParsePlatform(name string) TargetPlatform {
	if p, ok := platformAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return TargetPlatform(name)
}

// HostPlatform returns the platform and architecture preference of the running process.
func HostPlatform() (TargetPlatform, bool) {
	return ParsePlatform(runtime.GOOS), runtime.GOARCH == "arm64"
}

// SupportedPlatforms returns the known platforms in a stable order.
func SupportedPlatforms() []TargetPlatform {
	out := make([]TargetPlatform, 0, len(platforms))
	for p := range platforms {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Descriptors returns every descriptor the platform can resolve to, default architecture first.
func (p TargetPlatform) Descriptors() []PlatformDescriptor {
	pa, ok := platforms[p]
	if !ok {
		return nil
	}
	out := []PlatformDescriptor{pa.descriptor(pa.arch)}
	if pa.alt != "" {
		out = append(out, pa.descriptor(pa.alt))
	}
	return out
}

// Supported reports whether the platform is part of the known set.
func (p TargetPlatform) Supported() bool {
	_, ok := platforms[p]
	return ok
}

func (pa platformArch) descriptor(arch Arch) PlatformDescriptor {
	return PlatformDescriptor(pa.os + "-" + string(arch))
}

// Resolve maps a platform and architecture preference onto its descriptor.
// preferAltArch only matters for platforms with more than one architecture.
// Unknown platforms yield DescriptorUnknown together with ErrUnsupportedPlatform.
func Resolve(platform TargetPlatform, preferAltArch bool) (PlatformDescriptor, error) {
	pa, ok := platforms[platform]
	if !ok {
		return DescriptorUnknown, zerr.With(
			zerr.Wrap(ErrUnsupportedPlatform, "failed to resolve platform descriptor"),
			"platform", string(platform),
		)
	}
	if preferAltArch && pa.alt != "" {
		return pa.descriptor(pa.alt), nil
	}
	return pa.descriptor(pa.arch), nil
}
