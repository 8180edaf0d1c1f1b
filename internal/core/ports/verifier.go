package ports

// Verifier defines the interface for verifying artifact existence.
//
//go:generate mockgen -destination=mocks/verifier_mock.go -package=mocks -source=verifier.go
type Verifier interface {
	// MissingArtifacts returns the paths that do not exist, in input order.
	MissingArtifacts(paths []string) ([]string, error)
}
