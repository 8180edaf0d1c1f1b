package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/modrules/internal/adapters/telemetry"
	"go.trai.ch/modrules/internal/app"
	"go.trai.ch/modrules/internal/core/domain"
	"go.trai.ch/modrules/internal/core/ports"
	"go.trai.ch/modrules/internal/core/ports/mocks"
	"go.trai.ch/modrules/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type fixture struct {
	app      *app.App
	loader   *mocks.MockConfigLoader
	renderer *mocks.MockRenderer
	store    *mocks.MockDescriptorStore
	hasher   *mocks.MockHasher
	verifier *mocks.MockVerifier
	logger   *mocks.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		loader:   mocks.NewMockConfigLoader(ctrl),
		renderer: mocks.NewMockRenderer(ctrl),
		store:    mocks.NewMockDescriptorStore(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		verifier: mocks.NewMockVerifier(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	f.app = app.New(
		f.loader,
		pipeline.New(telemetry.NewNoOp()),
		f.renderer,
		f.store,
		f.hasher,
		f.verifier,
		f.logger,
		telemetry.NewNoOp(),
	).WithClock(func() time.Time { return fixedTime })
	return f
}

func pluginConfig() *domain.ModuleConfig {
	cfg := domain.DefaultModuleConfig()
	cfg.PluginDir = "/plugin"
	return &cfg
}

// captureRender records the descriptors handed to the renderer.
func (f *fixture) captureRender(format string, got *[]domain.BuildDescriptor) {
	f.renderer.EXPECT().Render(gomock.Any(), format, gomock.Any()).
		DoAndReturn(func(_ io.Writer, _ string, ds []domain.BuildDescriptor) error {
			*got = ds
			return nil
		})
}

func TestApp_Resolve_StoresNewRecord(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("modrules.yaml").Return(pluginConfig(), nil)
	f.hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	f.store.EXPECT().Get("DatabaseConnector/linux-x64").Return(nil, nil)
	f.store.EXPECT().Put(domain.DescriptorRecord{
		Module:      "DatabaseConnector",
		Platform:    "Linux",
		Descriptor:  "linux-x64",
		Fingerprint: "abc",
		Timestamp:   fixedTime,
	}).Return(nil)
	f.logger.EXPECT().Info("DatabaseConnector/linux-x64: updated (abc)")

	var got []domain.BuildDescriptor
	f.captureRender("yaml", &got)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{
		ConfigPath: "modrules.yaml",
		Platforms:  []string{"linux"},
		Format:     "yaml",
		Output:     &bytes.Buffer{},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, domain.PlatformDescriptor("linux-x64"), got[0].Descriptor())
	assert.Equal(t, []string{
		"/plugin/Source/ThirdParty/nanodbc/linux-x64/lib/libnanodbc.a",
		"/plugin/Source/ThirdParty/nanodbc/linux-x64/lib/installed/libodbc.a",
		"/plugin/Source/ThirdParty/nanodbc/linux-x64/lib/installed/libltdl.a",
	}, got[0].Libraries())
}

func TestApp_Resolve_UnchangedSkipsPut(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)
	f.hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	f.store.EXPECT().Get("DatabaseConnector/windows-x64").
		Return(&domain.DescriptorRecord{Fingerprint: "abc"}, nil)
	f.logger.EXPECT().Info("DatabaseConnector/windows-x64: unchanged (abc)")
	f.renderer.EXPECT().Render(gomock.Any(), "json", gomock.Len(1)).Return(nil)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{
		Platforms: []string{"Win64"},
		Format:    "json",
		Output:    io.Discard,
	})
	require.NoError(t, err)
}

func TestApp_Resolve_OverridesPluginDirAndArch(t *testing.T) {
	f := newFixture(t)
	alt := true

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)
	f.hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	f.store.EXPECT().Get("DatabaseConnector/darwin-arm64").Return(nil, nil)
	f.store.EXPECT().Put(gomock.Any()).Return(nil)
	f.logger.EXPECT().Info(gomock.Any())

	var got []domain.BuildDescriptor
	f.captureRender("flags", &got)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{
		PluginDir:     "/other",
		Platforms:     []string{"mac"},
		PreferAltArch: &alt,
		Format:        "flags",
		Output:        io.Discard,
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, domain.PlatformDescriptor("darwin-arm64"), got[0].Descriptor())
	assert.Equal(t, "/other/Source/ThirdParty/nanodbc/darwin-arm64/lib/libnanodbc.a", got[0].Libraries()[0])
	assert.Equal(t, []string{"iconv"}, got[0].SystemLibraries())
}

func TestApp_Resolve_All(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)
	f.hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc").Times(4)
	f.store.EXPECT().Get(gomock.Any()).Return(nil, nil).Times(4)
	f.store.EXPECT().Put(gomock.Any()).Return(nil).Times(4)
	f.logger.EXPECT().Info(gomock.Any()).Times(4)

	var got []domain.BuildDescriptor
	f.captureRender("yaml", &got)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{All: true, Format: "yaml", Output: io.Discard})
	require.NoError(t, err)

	descs := make([]domain.PlatformDescriptor, 0, len(got))
	for _, d := range got {
		descs = append(descs, d.Descriptor())
	}
	assert.Equal(t, []domain.PlatformDescriptor{"linux-x64", "darwin-x64", "darwin-arm64", "windows-x64"}, descs)
}

func TestApp_Resolve_UnsupportedIsStrictByDefault(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)
	f.logger.EXPECT().Warn("unknown platform: IOS")

	var got []domain.BuildDescriptor
	f.captureRender("yaml", &got)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{
		Platforms: []string{"IOS"},
		Format:    "yaml",
		Output:    io.Discard,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, []string{"IOS"}, zErr.Metadata()["platforms"])

	// The descriptor is still rendered with its diagnostic.
	require.Len(t, got, 1)
	assert.False(t, got[0].Supported())
	assert.Empty(t, got[0].Libraries())
	assert.Equal(t, []string{"unknown platform: IOS"}, got[0].Diagnostics())
}

func TestApp_Resolve_AllowUnsupported(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)
	f.hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	f.store.EXPECT().Get("DatabaseConnector/linux-x64").Return(nil, nil)
	f.store.EXPECT().Put(gomock.Any()).Return(nil)
	f.logger.EXPECT().Info(gomock.Any())
	gomock.InOrder(
		f.logger.EXPECT().Warn("unknown platform: Quest"),
		f.logger.EXPECT().Warn("unsupported platforms emitted without link inputs: Quest"),
	)
	f.renderer.EXPECT().Render(gomock.Any(), "yaml", gomock.Len(2)).Return(nil)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{
		Platforms:        []string{"Quest", "Linux"},
		Format:           "yaml",
		AllowUnsupported: true,
		Output:           io.Discard,
	})
	require.NoError(t, err)
}

func TestApp_Resolve_VerifyReportsEveryMissingArtifact(t *testing.T) {
	f := newFixture(t)

	missing := []string{
		"/plugin/Source/ThirdParty/nanodbc/linux-x64/lib/installed/libodbc.a",
		"/plugin/Source/ThirdParty/nanodbc/linux-x64/lib/installed/libltdl.a",
	}

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)
	f.verifier.EXPECT().MissingArtifacts([]string{
		"/plugin/Source/ThirdParty/nanodbc/linux-x64/lib/libnanodbc.a",
		missing[0],
		missing[1],
	}).Return(missing, nil)
	f.logger.EXPECT().Warn("linux-x64: missing artifact " + missing[0])
	f.logger.EXPECT().Warn("linux-x64: missing artifact " + missing[1])
	f.hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	f.store.EXPECT().Get(gomock.Any()).Return(nil, nil)
	f.store.EXPECT().Put(gomock.Any()).Return(nil)
	f.logger.EXPECT().Info(gomock.Any())
	f.renderer.EXPECT().Render(gomock.Any(), "yaml", gomock.Any()).Return(nil)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{
		Platforms: []string{"Linux"},
		Format:    "yaml",
		Verify:    true,
		Output:    io.Discard,
	})
	require.ErrorIs(t, err, domain.ErrMissingArtifacts)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	assert.Equal(t, missing, zErr.Metadata()["missing"])
}

func TestApp_Resolve_LoadError(t *testing.T) {
	f := newFixture(t)
	loadErr := errors.New("boom")

	f.loader.EXPECT().Load("broken.yaml").Return(nil, loadErr)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{ConfigPath: "broken.yaml", Output: io.Discard})
	require.ErrorIs(t, err, loadErr)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Resolve_StoreErrorStillRenders(t *testing.T) {
	f := newFixture(t)
	storeErr := errors.New("disk full")

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)
	f.hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	f.store.EXPECT().Get(gomock.Any()).Return(nil, nil)
	f.store.EXPECT().Put(gomock.Any()).Return(storeErr)
	f.logger.EXPECT().Warn(gomock.Cond(func(msg string) bool {
		return strings.HasPrefix(msg, "descriptor record not saved:") && strings.Contains(msg, "disk full")
	}))
	f.renderer.EXPECT().Render(gomock.Any(), "", gomock.Len(1)).Return(nil)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{
		Platforms: []string{"Linux"},
		Output:    io.Discard,
	})
	require.NoError(t, err)
}

func TestApp_Resolve_RenderError(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)
	f.hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	f.store.EXPECT().Get(gomock.Any()).Return(&domain.DescriptorRecord{Fingerprint: "abc"}, nil)
	f.logger.EXPECT().Info(gomock.Any())
	f.renderer.EXPECT().Render(gomock.Any(), "toml", gomock.Any()).Return(domain.ErrUnknownFormat)

	err := f.app.Resolve(context.Background(), app.ResolveOptions{
		Platforms: []string{"Linux"},
		Format:    "toml",
		Output:    io.Discard,
	})
	require.ErrorIs(t, err, domain.ErrUnknownFormat)
}

func TestApp_Resolve_Cancelled(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.loader.EXPECT().Load("").Return(pluginConfig(), nil)

	err := f.app.Resolve(ctx, app.ResolveOptions{Platforms: []string{"Linux"}, Output: io.Discard})
	require.ErrorIs(t, err, context.Canceled)
}

func TestApp_Platforms(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	require.NoError(t, f.app.Platforms(&buf))

	assert.Equal(t,
		"Linux  linux-x64\n"+
			"Mac    darwin-x64, darwin-arm64 (alternate)\n"+
			"Win64  windows-x64\n",
		buf.String())
}

func TestApp_Resolve_RecordsTelemetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	renderer := mocks.NewMockRenderer(ctrl)
	store := mocks.NewMockDescriptorStore(ctrl)
	hasher := mocks.NewMockHasher(ctrl)
	log := mocks.NewMockLogger(ctrl)
	tel := mocks.NewMockTelemetry(ctrl)
	vertex := mocks.NewMockVertex(ctrl)

	a := app.New(loader, pipeline.New(telemetry.NewNoOp()), renderer, store, hasher,
		mocks.NewMockVerifier(ctrl), log, tel)

	loader.EXPECT().Load("").Return(pluginConfig(), nil)
	hasher.EXPECT().Fingerprint(gomock.Any()).Return("abc")
	store.EXPECT().Get("DatabaseConnector/linux-x64").Return(&domain.DescriptorRecord{Fingerprint: "abc"}, nil)
	log.EXPECT().Info(gomock.Any())
	renderer.EXPECT().Render(gomock.Any(), "", gomock.Any()).Return(nil)

	tel.EXPECT().Record(gomock.Any(), "record DatabaseConnector/linux-x64").
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		})
	gomock.InOrder(
		vertex.EXPECT().Cached(),
		vertex.EXPECT().Complete(nil),
	)

	err := a.Resolve(context.Background(), app.ResolveOptions{Platforms: []string{"Linux"}, Output: io.Discard})
	require.NoError(t, err)
}
