// Package config provides the module rules loader for modrules.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/modrules/internal/core/domain"
	"go.trai.ch/modrules/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the rules file looked up by the CLI.
const DefaultFilename = "modrules.yaml"

const supportedVersion = "1"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the rules file at path and overlays it on the built-in defaults.
// An empty path returns the defaults unchanged.
func (l *Loader) Load(path string) (*domain.ModuleConfig, error) {
	if path == "" {
		cfg := domain.DefaultModuleConfig()
		return &cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	var rules Rulesfile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}

	cfg, err := toModuleConfig(&rules, filepath.Dir(path))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}

	l.warnTableCoverage(cfg.Artifacts)
	return cfg, nil
}

// Parse converts raw YAML into a module configuration, anchoring relative paths on baseDir.
func Parse(data []byte, baseDir string) (*domain.ModuleConfig, error) {
	var rules Rulesfile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}
	return toModuleConfig(&rules, baseDir)
}

func toModuleConfig(rules *Rulesfile, baseDir string) (*domain.ModuleConfig, error) {
	if rules.Version != "" && rules.Version != supportedVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unsupported config version"), "version", rules.Version)
	}

	cfg := domain.DefaultModuleConfig()

	if rules.Module != "" {
		cfg.Name = rules.Module
		cfg.Static.Module = rules.Module
	}

	cfg.PluginDir = baseDir
	if rules.PluginDir != "" {
		cfg.PluginDir = rules.PluginDir
		if !filepath.IsAbs(rules.PluginDir) {
			cfg.PluginDir = filepath.Join(baseDir, rules.PluginDir)
		}
	}

	overrideString(&cfg.ModuleDir, rules.ModuleDir)
	overrideString(&cfg.ThirdPartyRoot, rules.ThirdPartyRoot)
	overrideString(&cfg.CommonRoot, rules.CommonRoot)
	cfg.PreferAltArch = rules.PreferAltArch

	if rules.EnableExceptions != nil {
		cfg.Static.EnableExceptions = *rules.EnableExceptions
	}

	if rules.PCHUsage != "" {
		if !slices.Contains(pchModes, rules.PCHUsage) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unknown pch usage"), "pch_usage", rules.PCHUsage)
		}
		cfg.Static.PCHUsage = rules.PCHUsage
	}

	overrideList(&cfg.Static.PublicDependencies, rules.Dependencies.Public)
	overrideList(&cfg.Static.PrivateDependencies, rules.Dependencies.Private)
	overrideList(&cfg.Static.PublicIncludes, rules.Includes.Public)
	overrideList(&cfg.Static.PrivateIncludes, rules.Includes.Private)

	for i, dto := range rules.Definitions {
		if dto.Name == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "definition without name"), "index", i)
		}
		cfg.Static.Definitions = append(cfg.Static.Definitions, domain.Definition{Name: dto.Name, Value: dto.Value})
	}

	if rules.Capability != nil {
		if rules.Capability.Name == "" {
			return nil, zerr.Wrap(domain.ErrInvalidConfig, "capability without name")
		}
		cfg.Static.Capability = domain.Definition{Name: rules.Capability.Name, Value: rules.Capability.Value}
	}

	table, err := toArtifactTable(rules.Artifacts)
	if err != nil {
		return nil, err
	}
	cfg.Artifacts = table

	return &cfg, nil
}

var pchModes = []string{
	domain.PCHUseExplicitOrShared,
	domain.PCHUseShared,
	domain.PCHNoShared,
	domain.PCHDefault,
}

func toArtifactTable(dtos map[string]ArtifactDTO) (domain.ArtifactTable, error) {
	if len(dtos) == 0 {
		return nil, nil
	}

	table := make(domain.ArtifactTable, len(dtos))
	for key, dto := range dtos {
		if key == string(domain.DescriptorUnknown) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "reserved descriptor"), "descriptor", key)
		}
		if len(dto.Libraries) == 0 && len(dto.SystemLibraries) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "descriptor links nothing"), "descriptor", key)
		}

		entry := domain.PlatformArtifacts{
			Libraries:       slices.Clone(dto.Libraries),
			SystemLibraries: slices.Clone(dto.SystemLibraries),
		}
		for _, rt := range dto.Runtime {
			if rt.Destination == "" || rt.Source == "" {
				return nil, zerr.With(
					zerr.Wrap(domain.ErrInvalidConfig, "runtime dependency needs destination and source"),
					"descriptor", key,
				)
			}
			entry.RuntimeDependencies = append(entry.RuntimeDependencies, domain.RuntimeDependency{
				Destination: rt.Destination,
				Source:      rt.Source,
			})
		}
		table[domain.PlatformDescriptor(key)] = entry
	}
	return table, nil
}

// warnTableCoverage reports table entries no supported platform resolves to,
// and supported descriptors the table leaves out.
func (l *Loader) warnTableCoverage(table domain.ArtifactTable) {
	if l.logger == nil || len(table) == 0 {
		return
	}

	reachable := make(map[domain.PlatformDescriptor]bool)
	for _, p := range domain.SupportedPlatforms() {
		for _, d := range p.Descriptors() {
			reachable[d] = true
		}
	}

	for _, d := range table.Descriptors() {
		if !reachable[d] {
			l.logger.Warn(fmt.Sprintf("artifact table entry %q is not produced by any supported platform", d))
		}
	}
	for _, d := range table.Missing() {
		l.logger.Warn(fmt.Sprintf("artifact table has no entry for descriptor %q", d))
	}
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func overrideList(dst *[]string, v []string) {
	if v != nil {
		*dst = slices.Clone(v)
	}
}
