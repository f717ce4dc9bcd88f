package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"a11y-hq/lumen/pkg/config"
)

// Strategies accepted by telemetry.tracing.sampler.
const (
	SamplerAlways = "always"
	SamplerNever  = "never"
	SamplerRatio  = "ratio"
)

// newSampler builds the root sampler for cfg. It is parent-based: scans and
// rule evaluations started under a sampled request are always recorded.
func newSampler(cfg *config.TracingConfig) (sdktrace.Sampler, error) {
	var root sdktrace.Sampler
	switch cfg.Sampler {
	case SamplerAlways:
		root = sdktrace.AlwaysSample()
	case SamplerNever:
		root = sdktrace.NeverSample()
	case SamplerRatio, "":
		if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
			return nil, fmt.Errorf("sample ratio %v is outside [0, 1]", cfg.SampleRatio)
		}
		root = sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	default:
		return nil, fmt.Errorf("unknown sampler %q (want always, never or ratio)", cfg.Sampler)
	}
	return sdktrace.ParentBased(root), nil
}
