package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/modrules/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestResolve_SupportedPlatforms(t *testing.T) {
	tests := []struct {
		platform domain.TargetPlatform
		alt      bool
		want     domain.PlatformDescriptor
	}{
		{domain.PlatformWin64, false, "windows-x64"},
		{domain.PlatformWin64, true, "windows-x64"},
		{domain.PlatformLinux, false, "linux-x64"},
		{domain.PlatformLinux, true, "linux-x64"},
		{domain.PlatformMac, false, "darwin-x64"},
		{domain.PlatformMac, true, "darwin-arm64"},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			got, err := domain.Resolve(tt.platform, tt.alt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := domain.Resolve(tt.platform, tt.alt)
			require.NoError(t, err)
			assert.Equal(t, got, again, "resolution must be deterministic")
		})
	}
}

func TestResolve_MacArchitecturesDiffer(t *testing.T) {
	x64, err := domain.Resolve(domain.PlatformMac, false)
	require.NoError(t, err)
	arm, err := domain.Resolve(domain.PlatformMac, true)
	require.NoError(t, err)

	assert.NotEqual(t, x64, arm)
}

func TestResolve_UnknownPlatform(t *testing.T) {
	got, err := domain.Resolve("PS5", false)
	require.Error(t, err)
	assert.Equal(t, domain.DescriptorUnknown, got)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedPlatform))
	assert.True(t, domain.IsUnsupported(err))

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr), "expected *zerr.Error, got %T", err)
	assert.Equal(t, "PS5", zErr.Metadata()["platform"])
}

func TestParsePlatform(t *testing.T) {
	tests := map[string]domain.TargetPlatform{
		"Win64":    domain.PlatformWin64,
		"windows":  domain.PlatformWin64,
		"linux":    domain.PlatformLinux,
		" Linux ":  domain.PlatformLinux,
		"Mac":      domain.PlatformMac,
		"macos":    domain.PlatformMac,
		"darwin":   domain.PlatformMac,
		"HoloLens": "HoloLens",
	}

	for in, want := range tests {
		assert.Equal(t, want, domain.ParsePlatform(in), "input %q", in)
	}
}

func TestTargetPlatform_Descriptors(t *testing.T) {
	assert.Equal(t, []domain.PlatformDescriptor{"darwin-x64", "darwin-arm64"}, domain.PlatformMac.Descriptors())
	assert.Equal(t, []domain.PlatformDescriptor{"linux-x64"}, domain.PlatformLinux.Descriptors())
	assert.Nil(t, domain.TargetPlatform("Android").Descriptors())
	assert.False(t, domain.TargetPlatform("Android").Supported())
}

func TestSupportedPlatforms(t *testing.T) {
	assert.Equal(t,
		[]domain.TargetPlatform{domain.PlatformLinux, domain.PlatformMac, domain.PlatformWin64},
		domain.SupportedPlatforms(),
	)
}
