// Package app implements the application layer for modrules.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.trai.ch/modrules/internal/core/domain"
	"go.trai.ch/modrules/internal/core/ports"
	"go.trai.ch/modrules/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	pipeline     *pipeline.Pipeline
	renderer     ports.Renderer
	store        ports.DescriptorStore
	hasher       ports.Hasher
	verifier     ports.Verifier
	logger       ports.Logger
	telemetry    ports.Telemetry
	now          func() time.Time
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	pipe *pipeline.Pipeline,
	renderer ports.Renderer,
	store ports.DescriptorStore,
	hasher ports.Hasher,
	verifier ports.Verifier,
	logger ports.Logger,
	telemetry ports.Telemetry,
) *App {
	return &App{
		configLoader: loader,
		pipeline:     pipe,
		renderer:     renderer,
		store:        store,
		hasher:       hasher,
		verifier:     verifier,
		logger:       logger,
		telemetry:    telemetry,
		now:          time.Now,
	}
}

// WithClock replaces the clock used to timestamp descriptor records.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// ResolveOptions configures a resolve run.
type ResolveOptions struct {
	// ConfigPath is the module rules file. Empty uses the built-in defaults.
	ConfigPath string
	// PluginDir overrides the plugin directory of the loaded rules.
	PluginDir string
	// Platforms are user supplied platform names. Empty resolves the host platform.
	Platforms []string
	// All resolves every descriptor of every supported platform.
	All bool
	// PreferAltArch overrides the architecture preference when set.
	PreferAltArch *bool
	// Format selects the output format.
	Format string
	// Verify checks that every artifact exists on disk.
	Verify bool
	// AllowUnsupported reports unsupported platforms as warnings instead of failing.
	AllowUnsupported bool
	// Output receives the rendered descriptors. Defaults to stdout.
	Output io.Writer
}

// Resolve emits build descriptors for the requested platforms.
func (a *App) Resolve(ctx context.Context, opts ResolveOptions) error {
	// 1. Load the module rules
	cfg, err := a.configLoader.Load(opts.ConfigPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	if opts.PluginDir != "" {
		cfg.PluginDir = opts.PluginDir
	}
	if opts.PreferAltArch != nil {
		cfg.PreferAltArch = *opts.PreferAltArch
	}

	// 2. Run the pipeline
	results, err := a.pipeline.Run(ctx, *cfg, pipeline.Request{Targets: targets(cfg, opts)})
	if err != nil {
		return zerr.Wrap(err, "descriptor resolution failed")
	}

	var (
		descriptors []domain.BuildDescriptor
		unsupported []string
		missing     []string
	)
	for _, res := range results {
		descriptors = append(descriptors, res.Descriptor)
		if res.Err != nil {
			unsupported = append(unsupported, string(res.Platform))
			for _, diag := range res.Descriptor.Diagnostics() {
				a.logger.Warn(diag)
			}
			continue
		}

		// 3. Verify artifacts
		if opts.Verify {
			absent, verr := a.verifier.MissingArtifacts(artifactPaths(res.Descriptor))
			if verr != nil {
				return zerr.Wrap(verr, "failed to verify artifacts")
			}
			for _, p := range absent {
				a.logger.Warn(fmt.Sprintf("%s: missing artifact %s", res.Descriptor.Descriptor(), p))
			}
			missing = append(missing, absent...)
		}

		// 4. Record the fingerprint. Resolution never depends on the store.
		if err := a.record(ctx, res.Descriptor); err != nil {
			a.logger.Warn(fmt.Sprintf("descriptor record not saved: %v", err))
		}
	}

	// 5. Render
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if err := a.renderer.Render(out, opts.Format, descriptors); err != nil {
		return zerr.Wrap(err, "failed to render descriptors")
	}

	if len(missing) > 0 {
		return zerr.With(zerr.Wrap(domain.ErrMissingArtifacts, "artifact verification failed"), "missing", missing)
	}
	if len(unsupported) > 0 {
		if !opts.AllowUnsupported {
			return zerr.With(
				zerr.Wrap(domain.ErrUnsupportedPlatform, "unsupported platforms requested"),
				"platforms", unsupported,
			)
		}
		a.logger.Warn("unsupported platforms emitted without link inputs: " + strings.Join(unsupported, ", "))
	}
	return nil
}

func (a *App) record(ctx context.Context, d domain.BuildDescriptor) (err error) {
	key := domain.RecordKey(d.Module(), string(d.Descriptor()))
	_, vertex := a.telemetry.Record(ctx, "record "+key)
	defer func() { vertex.Complete(err) }()

	fingerprint := a.hasher.Fingerprint(d)

	prev, err := a.store.Get(key)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read descriptor record"), "key", key)
	}
	if prev != nil && prev.Fingerprint == fingerprint {
		vertex.Cached()
		a.logger.Info(fmt.Sprintf("%s: unchanged (%s)", key, fingerprint))
		return nil
	}

	err = a.store.Put(domain.DescriptorRecord{
		Module:      d.Module(),
		Platform:    string(d.Platform()),
		Descriptor:  string(d.Descriptor()),
		Fingerprint: fingerprint,
		Timestamp:   a.now(),
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to store descriptor record"), "key", key)
	}
	a.logger.Info(fmt.Sprintf("%s: updated (%s)", key, fingerprint))
	return nil
}

// Platforms writes every supported platform with its descriptors to w.
func (a *App) Platforms(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range domain.SupportedPlatforms() {
		descs := p.Descriptors()
		names := make([]string, 0, len(descs))
		for i, d := range descs {
			if i > 0 {
				names = append(names, d.String()+" (alternate)")
				continue
			}
			names = append(names, d.String())
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", p, strings.Join(names, ", ")); err != nil {
			return zerr.Wrap(err, "failed to write platforms")
		}
	}
	if err := tw.Flush(); err != nil {
		return zerr.Wrap(err, "failed to write platforms")
	}
	return nil
}

func targets(cfg *domain.ModuleConfig, opts ResolveOptions) []pipeline.Target {
	if opts.All {
		return pipeline.AllTargets()
	}
	if len(opts.Platforms) == 0 {
		host, hostAlt := domain.HostPlatform()
		preferAlt := cfg.PreferAltArch || hostAlt
		if opts.PreferAltArch != nil {
			preferAlt = *opts.PreferAltArch
		}
		return pipeline.Targets(preferAlt, host)
	}
	platforms := make([]domain.TargetPlatform, 0, len(opts.Platforms))
	for _, name := range opts.Platforms {
		platforms = append(platforms, domain.ParsePlatform(name))
	}
	return pipeline.Targets(cfg.PreferAltArch, platforms...)
}

func artifactPaths(d domain.BuildDescriptor) []string {
	paths := d.Libraries()
	for _, rd := range d.RuntimeDependencies() {
		paths = append(paths, rd.Source)
	}
	return paths
}
