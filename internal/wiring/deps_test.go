package wiring_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/modrules/internal/app"
	"go.trai.ch/modrules/internal/core/domain"
	_ "go.trai.ch/modrules/internal/wiring"
)

func TestGraph_BuildsComponents(t *testing.T) {
	t.Chdir(t.TempDir())
	graft.ResetDefaultCache()
	t.Cleanup(graft.ResetDefaultCache)

	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = components.Close() })

	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
	require.NotNil(t, components.Telemetry)

	var out bytes.Buffer
	require.NoError(t, components.App.Platforms(&out))
	for _, p := range domain.SupportedPlatforms() {
		assert.Contains(t, out.String(), string(p))
	}
}
