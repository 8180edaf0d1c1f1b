package config

// Rulesfile represents the structure of the modrules.yaml configuration file.
type Rulesfile struct {
	Version          string                 `yaml:"version"`
	Module           string                 `yaml:"module"`
	PluginDir        string                 `yaml:"pluginDir"`
	ModuleDir        string                 `yaml:"moduleDir"`
	ThirdPartyRoot   string                 `yaml:"thirdPartyRoot"`
	CommonRoot       string                 `yaml:"commonRoot"`
	PreferAltArch    bool                   `yaml:"preferAltArch"`
	EnableExceptions *bool                  `yaml:"enableExceptions"`
	PCHUsage         string                 `yaml:"pchUsage"`
	Dependencies     VisibilityDTO          `yaml:"dependencies"`
	Includes         VisibilityDTO          `yaml:"includes"`
	Definitions      []DefinitionDTO        `yaml:"definitions"`
	Capability       *DefinitionDTO         `yaml:"capability"`
	Artifacts        map[string]ArtifactDTO `yaml:"artifacts"`
}

// VisibilityDTO splits a list into public and private entries.
// A nil list keeps the default; an empty list clears it.
type VisibilityDTO struct {
	Public  []string `yaml:"public"`
	Private []string `yaml:"private"`
}

// DefinitionDTO represents a preprocessor definition.
type DefinitionDTO struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ArtifactDTO represents the artifacts of one platform descriptor.
type ArtifactDTO struct {
	Libraries       []string     `yaml:"libraries"`
	SystemLibraries []string     `yaml:"systemLibraries"`
	Runtime         []RuntimeDTO `yaml:"runtime"`
}

// RuntimeDTO represents a file staged next to the built binary.
type RuntimeDTO struct {
	Destination string `yaml:"destination"`
	Source      string `yaml:"source"`
}
