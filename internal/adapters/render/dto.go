package render

import "go.trai.ch/modrules/internal/core/domain"

// DescriptorDTO is the serialized form of a build descriptor.
type DescriptorDTO struct {
	Module              string        `yaml:"module" json:"module"`
	Platform            string        `yaml:"platform" json:"platform"`
	Descriptor          string        `yaml:"descriptor" json:"descriptor"`
	Supported           bool          `yaml:"supported" json:"supported"`
	Libraries           []string      `yaml:"libraries" json:"libraries"`
	SystemLibraries     []string      `yaml:"systemLibraries,omitempty" json:"systemLibraries,omitempty"`
	RuntimeDependencies []RuntimeDTO  `yaml:"runtimeDependencies,omitempty" json:"runtimeDependencies,omitempty"`
	Includes            VisibilityDTO `yaml:"includes" json:"includes"`
	Definitions         []string      `yaml:"definitions" json:"definitions"`
	Dependencies        VisibilityDTO `yaml:"dependencies" json:"dependencies"`
	EnableExceptions    bool          `yaml:"enableExceptions" json:"enableExceptions"`
	PCHUsage            string        `yaml:"pchUsage,omitempty" json:"pchUsage,omitempty"`
	Diagnostics         []string      `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}

// VisibilityDTO splits entries by visibility.
type VisibilityDTO struct {
	Public  []string `yaml:"public" json:"public"`
	Private []string `yaml:"private" json:"private"`
}

// RuntimeDTO is a file staged next to the built binary.
type RuntimeDTO struct {
	Destination string `yaml:"destination" json:"destination"`
	Source      string `yaml:"source" json:"source"`
}

func toDTO(d domain.BuildDescriptor) DescriptorDTO {
	dto := DescriptorDTO{
		Module:           d.Module(),
		Platform:         string(d.Platform()),
		Descriptor:       d.Descriptor().String(),
		Supported:        d.Supported(),
		Libraries:        nonNil(d.Libraries()),
		SystemLibraries:  d.SystemLibraries(),
		Includes:         VisibilityDTO{Public: nonNil(d.PublicIncludes()), Private: nonNil(d.PrivateIncludes())},
		Dependencies:     VisibilityDTO{Public: nonNil(d.PublicDependencies()), Private: nonNil(d.PrivateDependencies())},
		EnableExceptions: d.EnableExceptions(),
		PCHUsage:         d.PCHUsage(),
		Diagnostics:      d.Diagnostics(),
	}
	for _, dep := range d.RuntimeDependencies() {
		dto.RuntimeDependencies = append(dto.RuntimeDependencies, RuntimeDTO{Destination: dep.Destination, Source: dep.Source})
	}
	for _, def := range d.Definitions() {
		dto.Definitions = append(dto.Definitions, def.String())
	}
	return dto
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
