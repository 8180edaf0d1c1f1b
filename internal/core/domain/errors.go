package domain

import "go.trai.ch/zerr"

var (
	// ErrUnsupportedPlatform is returned when a target platform has no artifact set.
	ErrUnsupportedPlatform = zerr.New("unsupported platform")

	// ErrNoPlatformsSpecified is returned when a resolution request names no platform.
	ErrNoPlatformsSpecified = zerr.New("no platforms specified")

	// ErrUnknownFormat is returned when an output format is not recognized.
	ErrUnknownFormat = zerr.New("unknown output format")

	// ErrMissingArtifacts is returned when verification finds artifacts absent on disk.
	ErrMissingArtifacts = zerr.New("missing artifacts")

	// ErrInvalidConfig is returned when a module rules file fails validation.
	ErrInvalidConfig = zerr.New("invalid module configuration")
)
