package semtok

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordEmbed is called after each embedding extraction.
	// frames is the total number of embedding frames produced,
	// duration is the total time taken, err is nil if successful.
	RecordEmbed(frames int, duration time.Duration, err error)

	// RecordTokenize is called after each tokenization.
	// tokens is the total number of token ids produced.
	RecordTokenize(tokens int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEmbed(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordTokenize(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EmbedCount         atomic.Int64
	EmbedErrors        atomic.Int64
	EmbedFrames        atomic.Int64
	EmbedTotalNanos    atomic.Int64
	TokenizeCount      atomic.Int64
	TokenizeErrors     atomic.Int64
	TokenizeTokens     atomic.Int64
	TokenizeTotalNanos atomic.Int64
}

// RecordEmbed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmbed(frames int, duration time.Duration, err error) {
	b.EmbedCount.Add(1)
	b.EmbedFrames.Add(int64(frames))
	b.EmbedTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EmbedErrors.Add(1)
	}
}

// RecordTokenize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTokenize(tokens int, duration time.Duration, err error) {
	b.TokenizeCount.Add(1)
	b.TokenizeTokens.Add(int64(tokens))
	b.TokenizeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TokenizeErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EmbedCount:       b.EmbedCount.Load(),
		EmbedErrors:      b.EmbedErrors.Load(),
		EmbedFrames:      b.EmbedFrames.Load(),
		EmbedAvgNanos:    avgNanos(b.EmbedTotalNanos.Load(), b.EmbedCount.Load()),
		TokenizeCount:    b.TokenizeCount.Load(),
		TokenizeErrors:   b.TokenizeErrors.Load(),
		TokenizeTokens:   b.TokenizeTokens.Load(),
		TokenizeAvgNanos: avgNanos(b.TokenizeTotalNanos.Load(), b.TokenizeCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EmbedCount       int64
	EmbedErrors      int64
	EmbedFrames      int64
	EmbedAvgNanos    int64
	TokenizeCount    int64
	TokenizeErrors   int64
	TokenizeTokens   int64
	TokenizeAvgNanos int64
}
