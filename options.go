package semtok

import (
	"log/slog"
)

type options struct {
	layer            int
	targetRate       int
	frameMultiple    int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Tokenizer construction.
type Option func(*options)

// WithLayer selects which encoder hidden layer the tokens are derived from.
// The default is layer 7, which works well for semantic tokens from
// HuBERT-style encoders.
func WithLayer(layer int) Option {
	return func(o *options) {
		o.layer = layer
	}
}

// WithTargetSampleRate overrides the sample rate waveforms are resampled to
// before encoding. The default is the encoder's native rate.
func WithTargetSampleRate(rate int) Option {
	return func(o *options) {
		o.targetRate = rate
	}
}

// WithFrameMultiple overrides the sample count multiple waveforms are
// curtailed to before encoding. The default of 320 matches the 20ms frame
// stride of 16kHz HuBERT-style encoders.
func WithFrameMultiple(multiple int) Option {
	return func(o *options) {
		o.frameMultiple = multiple
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		layer:            DefaultLayer,
		frameMultiple:    DefaultFrameMultiple,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
