// Package render writes build descriptors in the formats orchestrators consume.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.trai.ch/modrules/internal/core/domain"
	"go.trai.ch/modrules/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatFlags = "flags"
)

// Formats lists every supported format.
var Formats = []string{FormatYAML, FormatJSON, FormatFlags}

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes descriptors to w. YAML is a multi-document stream, JSON an array,
// and flags a CFLAGS/LDFLAGS pair per descriptor. An empty format means YAML.
func (r *Renderer) Render(w io.Writer, format string, descriptors []domain.BuildDescriptor) error {
	switch format {
	case FormatYAML, "":
		return renderYAML(w, descriptors)
	case FormatJSON:
		return renderJSON(w, descriptors)
	case FormatFlags:
		return renderFlags(w, descriptors)
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnknownFormat, "failed to render descriptors"), "format", format)
	}
}

func renderYAML(w io.Writer, descriptors []domain.BuildDescriptor) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, d := range descriptors {
		if err := enc.Encode(toDTO(d)); err != nil {
			return zerr.Wrap(err, "failed to encode descriptor as yaml")
		}
	}
	if err := enc.Close(); err != nil {
		return zerr.Wrap(err, "failed to flush yaml encoder")
	}
	return nil
}

func renderJSON(w io.Writer, descriptors []domain.BuildDescriptor) error {
	dtos := make([]DescriptorDTO, 0, len(descriptors))
	for _, d := range descriptors {
		dtos = append(dtos, toDTO(d))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dtos); err != nil {
		return zerr.Wrap(err, "failed to encode descriptors as json")
	}
	return nil
}

func renderFlags(w io.Writer, descriptors []domain.BuildDescriptor) error {
	for i, d := range descriptors {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return zerr.Wrap(err, "failed to write flags")
			}
		}
		if _, err := io.WriteString(w, Flags(d)); err != nil {
			return zerr.Wrap(err, "failed to write flags")
		}
	}
	return nil
}

// Flags renders a descriptor as compiler and linker flags.
func Flags(d domain.BuildDescriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s (%s)\n", d.Module(), d.Platform(), d.Descriptor())
	for _, diag := range d.Diagnostics() {
		fmt.Fprintf(&b, "# warning: %s\n", diag)
	}

	cflags := make([]string, 0)
	for _, inc := range d.Includes() {
		cflags = append(cflags, "-I"+quote(inc))
	}
	for _, def := range d.Definitions() {
		cflags = append(cflags, "-D"+quote(def.String()))
	}
	if d.EnableExceptions() {
		cflags = append(cflags, "-fexceptions")
	}

	ldflags := make([]string, 0)
	for _, lib := range d.Libraries() {
		ldflags = append(ldflags, quote(lib))
	}
	for _, lib := range d.SystemLibraries() {
		ldflags = append(ldflags, "-l"+lib)
	}

	fmt.Fprintf(&b, "CFLAGS=%s\n", strings.Join(cflags, " "))
	fmt.Fprintf(&b, "LDFLAGS=%s\n", strings.Join(ldflags, " "))
	return b.String()
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t\"'") {
		return strconv.Quote(s)
	}
	return s
}
