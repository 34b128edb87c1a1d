package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultRequestTimeout = 120 * time.Second

// RemoteOptions configures the remote encoder client.
type RemoteOptions struct {
	// HTTPClient is the client used for inference calls.
	// If nil, a client with a 120s timeout is used.
	HTTPClient *http.Client

	// Logger receives request-level debug logs. Verbosity is scoped to this
	// client instead of a process-wide logging switch; pass a handler with
	// the level you want, or leave nil to stay silent.
	Logger *slog.Logger

	// RequestsPerSecond rate-limits inference calls. Zero means unlimited.
	RequestsPerSecond float64

	// NumLayers is the number of hidden layers the model reports.
	NumLayers int
}

// Remote is an Encoder backed by an HTTP inference endpoint that exposes a
// pretrained checkpoint's hidden states.
//
// The endpoint contract is a single POST to {baseURL}/v1/encode with a JSON
// body carrying the model identifier, the waveform batch and its attention
// mask; the response carries hidden states for every layer.
type Remote struct {
	baseURL    string
	model      string
	dim        int
	sampleRate int
	numLayers  int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewRemote creates a client for the named pretrained model.
// dim and sampleRate describe the checkpoint (e.g. 768 and 16000 for base
// speech models) and are fixed per model identifier.
func NewRemote(baseURL, model string, dim, sampleRate int, optFns ...func(*RemoteOptions)) *Remote {
	opts := RemoteOptions{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Remote{
		baseURL:    baseURL,
		model:      model,
		dim:        dim,
		sampleRate: sampleRate,
		numLayers:  opts.NumLayers,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
}

type encodeRequest struct {
	Model              string      `json:"model"`
	SampleRate         int         `json:"sample_rate"`
	Inputs             [][]float32 `json:"inputs"`
	AttentionMask      [][]int64   `json:"attention_mask"`
	OutputHiddenStates bool        `json:"output_hidden_states"`
}

type encodeResponse struct {
	HiddenStates [][][][]float32 `json:"hidden_states"`
	Error        string          `json:"error,omitempty"`
}

// Encode runs one forward pass and returns all hidden layers.
func (r *Remote) Encode(ctx context.Context, samples [][]float32, mask [][]int64) (*Output, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(encodeRequest{
		Model:              r.model,
		SampleRate:         r.sampleRate,
		Inputs:             samples,
		AttentionMask:      mask,
		OutputHiddenStates: true,
	})
	if err != nil {
		return nil, fmt.Errorf("encoder: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/encode", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("encoder: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("encoder: endpoint returned %d: %s", resp.StatusCode, msg)
	}

	var decoded encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("encoder: decode response: %w", err)
	}
	if decoded.Error != "" {
		return nil, fmt.Errorf("encoder: %s", decoded.Error)
	}

	r.logger.DebugContext(ctx, "encode completed",
		"model", r.model,
		"batch", len(samples),
		"layers", len(decoded.HiddenStates),
		"duration", time.Since(start),
	)

	return &Output{HiddenStates: decoded.HiddenStates}, nil
}

// Dim returns the encoder's hidden size.
func (r *Remote) Dim() int { return r.dim }

// SampleRate returns the waveform sample rate the encoder expects.
func (r *Remote) SampleRate() int { return r.sampleRate }

// NumLayers returns the configured layer count, or 0 if unknown.
func (r *Remote) NumLayers() int { return r.numLayers }

// ModelName identifies the pretrained checkpoint.
func (r *Remote) ModelName() string { return r.model }
