// Package pipeline runs the resolve, build and emit steps for one or more platforms.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"go.trai.ch/modrules/internal/core/domain"
	"go.trai.ch/modrules/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Target is a platform with its architecture preference.
type Target struct {
	Platform      domain.TargetPlatform
	PreferAltArch bool
}

// Request names the targets to resolve.
type Request struct {
	Targets []Target
}

// Targets pairs every platform with the same architecture preference.
func Targets(preferAltArch bool, platforms ...domain.TargetPlatform) []Target {
	out := make([]Target, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, Target{Platform: p, PreferAltArch: preferAltArch})
	}
	return out
}

// AllTargets returns one target per descriptor of every supported platform.
func AllTargets() []Target {
	var out []Target
	for _, p := range domain.SupportedPlatforms() {
		for i := range p.Descriptors() {
			out = append(out, Target{Platform: p, PreferAltArch: i > 0})
		}
	}
	return out
}

// Result is the outcome for one requested platform.
// Err is set, and wraps domain.ErrUnsupportedPlatform, when the platform is unknown.
type Result struct {
	Platform   domain.TargetPlatform
	Descriptor domain.BuildDescriptor
	Err        error
}

// Pipeline resolves build descriptors.
type Pipeline struct {
	telemetry   ports.Telemetry
	parallelism int
}

// New creates a Pipeline limited to one worker per CPU.
func New(telemetry ports.Telemetry) *Pipeline {
	return &Pipeline{
		telemetry:   telemetry,
		parallelism: runtime.NumCPU(),
	}
}

// WithParallelism sets the maximum number of platforms resolved at once.
func (p *Pipeline) WithParallelism(n int) *Pipeline {
	if n > 0 {
		p.parallelism = n
	}
	return p
}

// Run resolves every requested platform. Results keep the request order.
// Unsupported platforms do not fail the run; their Result carries the error.
// The returned error is non-nil only when ctx is cancelled or no platform was requested.
func (p *Pipeline) Run(ctx context.Context, cfg domain.ModuleConfig, req Request) ([]Result, error) {
	if len(req.Targets) == 0 {
		return nil, domain.ErrNoPlatformsSpecified
	}

	results := make([]Result, len(req.Targets))

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)

	for i, target := range req.Targets {
		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = p.resolve(groupCtx, cfg, target)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, zerr.Wrap(err, "resolution cancelled")
	}
	return results, nil
}

func (p *Pipeline) resolve(ctx context.Context, cfg domain.ModuleConfig, target Target) Result {
	name := "resolve " + string(target.Platform)
	if target.PreferAltArch {
		name += " (alternate arch)"
	}
	_, vertex := p.telemetry.Record(ctx, name)

	d, err := domain.ResolveModule(cfg, target.Platform, target.PreferAltArch)
	if err != nil {
		for _, diag := range d.Diagnostics() {
			vertex.Log(diag)
		}
	} else {
		vertex.Log(fmt.Sprintf("%s: %d libraries, %d include directories",
			d.Descriptor(), len(d.Libraries()), len(d.Includes())))
	}
	vertex.Complete(err)

	return Result{Platform: target.Platform, Descriptor: d, Err: err}
}
