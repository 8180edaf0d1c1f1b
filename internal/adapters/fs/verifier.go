package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/modrules/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier checks that resolved artifacts exist on disk.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// MissingArtifacts returns every path that does not exist, in input order.
func (v *Verifier) MissingArtifacts(paths []string) ([]string, error) {
	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(filepath.FromSlash(p)); err != nil {
			if os.IsNotExist(err) {
				missing = append(missing, p)
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat artifact"), "path", p)
		}
	}
	return missing, nil
}
