package fs

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/modrules/internal/core/domain"
	"go.trai.ch/modrules/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints build descriptors with XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint computes a hash over every field handed to the orchestrator.
// Lists are hashed in order, so a link order change yields a new fingerprint.
func (h *Hasher) Fingerprint(d domain.BuildDescriptor) string {
	hasher := xxhash.New()

	writeField(hasher, d.Module())
	writeField(hasher, string(d.Platform()))
	writeField(hasher, d.Descriptor().String())

	writeList(hasher, d.Libraries())
	writeList(hasher, d.SystemLibraries())

	for _, dep := range d.RuntimeDependencies() {
		writeField(hasher, dep.Destination)
		writeField(hasher, dep.Source)
	}
	_, _ = hasher.Write([]byte{0})

	writeList(hasher, d.PublicIncludes())
	writeList(hasher, d.PrivateIncludes())

	for _, def := range d.Definitions() {
		writeField(hasher, def.String())
	}
	_, _ = hasher.Write([]byte{0})

	writeList(hasher, d.PublicDependencies())
	writeList(hasher, d.PrivateDependencies())

	writeField(hasher, strconv.FormatBool(d.EnableExceptions()))
	writeField(hasher, d.PCHUsage())

	return fmt.Sprintf("%016x", hasher.Sum64())
}

func writeField(hasher *xxhash.Digest, s string) {
	_, _ = hasher.WriteString(s)
	_, _ = hasher.Write([]byte{0}) // Separator
}

// writeList hashes the entries followed by a section separator.
func writeList(hasher *xxhash.Digest, list []string) {
	for _, s := range list {
		writeField(hasher, s)
	}
	_, _ = hasher.Write([]byte{0})
}
