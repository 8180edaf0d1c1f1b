package domain

import (
	"path"
	"path/filepath"
	"slices"
)

// Definition is a preprocessor symbol with an optional value.
type Definition struct {
	Name  string
	Value string
}

// String renders the definition as NAME or NAME=VALUE.
func (d Definition) String() string {
	if d.Value == "" {
		return d.Name
	}
	return d.Name + "=" + d.Value
}

// CapabilityDefinition marks the ODBC connector as compiled in.
var CapabilityDefinition = Definition{Name: "WITH_DATABASE_ODBC_CONNECTOR", Value: "1"}

// PCHUsage values understood by the orchestrator.
const (
	PCHUseExplicitOrShared = "UseExplicitOrSharedPCHs"
	PCHUseShared           = "UseSharedPCHs"
	PCHNoShared            = "NoSharedPCHs"
	PCHDefault             = "Default"
)

// StaticConfig is the platform independent part of a build descriptor.
type StaticConfig struct {
	Module              string
	PublicDependencies  []string
	PrivateDependencies []string
	PublicIncludes      []string
	PrivateIncludes     []string
	Definitions         []Definition
	Capability          Definition
	EnableExceptions    bool
	PCHUsage            string
}

// ModuleConfig describes a module as read from its rules file.
// Relative roots are anchored on PluginDir, include directories on ModuleDir.
type ModuleConfig struct {
	Name           string
	PluginDir      string
	ModuleDir      string
	ThirdPartyRoot string
	CommonRoot     string
	PreferAltArch  bool
	Static         StaticConfig
	// Artifacts replaces DefaultArtifacts when non-empty.
	Artifacts ArtifactTable
}

// DefaultModuleConfig returns the DatabaseConnector module rules.
func DefaultModuleConfig() ModuleConfig {
	return ModuleConfig{
		Name:           "DatabaseConnector",
		ModuleDir:      "Source/DatabaseConnector",
		ThirdPartyRoot: "Source/ThirdParty/nanodbc",
		CommonRoot:     "Source/ThirdParty/nanodbc/common",
		Static: StaticConfig{
			Module:              "DatabaseConnector",
			PublicDependencies:  []string{"Core"},
			PrivateDependencies: []string{"CoreUObject", "Engine"},
			PublicIncludes:      []string{"Public"},
			PrivateIncludes:     []string{"Private"},
			Capability:          CapabilityDefinition,
			EnableExceptions:    true,
			PCHUsage:            PCHUseExplicitOrShared,
		},
	}
}

// Roots returns the artifact roots anchored on the plugin directory.
func (c ModuleConfig) Roots() Roots {
	return Roots{
		ThirdPartyRoot: anchor(c.PluginDir, c.ThirdPartyRoot),
		CommonRoot:     anchor(c.PluginDir, c.CommonRoot),
	}
}

// StaticConfig returns the static configuration with include directories anchored on the module directory.
func (c ModuleConfig) StaticConfig() StaticConfig {
	moduleDir := anchor(c.PluginDir, c.ModuleDir)

	s := c.Static
	if s.Module == "" {
		s.Module = c.Name
	}
	s.PublicDependencies = slices.Clone(s.PublicDependencies)
	s.PrivateDependencies = slices.Clone(s.PrivateDependencies)
	s.Definitions = slices.Clone(s.Definitions)
	s.PublicIncludes = anchorAll(moduleDir, s.PublicIncludes)
	s.PrivateIncludes = anchorAll(moduleDir, s.PrivateIncludes)
	return s
}

// Table returns the artifact table in effect for the module.
func (c ModuleConfig) Table() ArtifactTable {
	if len(c.Artifacts) == 0 {
		return DefaultArtifacts
	}
	return c.Artifacts
}

func anchor(base, p string) string {
	if p == "" {
		return ""
	}
	p = filepath.ToSlash(p)
	if base == "" || isAbs(p) {
		return path.Clean(p)
	}
	return path.Join(filepath.ToSlash(base), p)
}

func anchorAll(base string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, anchor(base, p))
	}
	return out
}

// isAbs also accepts Windows drive paths regardless of the host OS.
func isAbs(p string) bool {
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return true
	}
	return len(p) >= 3 && p[1] == ':' && p[2] == '/'
}
