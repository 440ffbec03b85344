package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderOffline = "offline"

	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultOllamaModel = "nomic-embed-text"

	OpenAIDimension = 1536
	OllamaDimension = 768

	maxBatchSize = 100
)

// OpenAIProvider calls the OpenAI embeddings API.
type OpenAIProvider struct {
	apiKey     string
	model      string
	dim        int
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates an OpenAI-backed embedder.
func NewOpenAIProvider(apiKey, model string, dim int, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key not set", ErrNoProviderEnabled)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if dim <= 0 {
		dim = OpenAIDimension
	}
	return &OpenAIProvider{
		apiKey: apiKey,
		model:  model,
		dim:    dim,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: cache,
	}, nil
}

func (o *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if o.cache != nil {
		if v, ok := o.cache.Get(CacheKey(text)); ok {
			return v, nil
		}
	}

	vectors, err := o.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (o *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	if len(texts) > maxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts per batch", ErrProviderFailed, maxBatchSize)
	}

	vectors, err := withRetry(ctx, defaultRetryPolicy(), func() ([][]float32, error) {
		return o.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, maxRetries, err)
	}

	if o.cache != nil {
		for i, v := range vectors {
			o.cache.Set(CacheKey(texts[i]), v)
		}
	}
	return vectors, nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": o.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(apiResp.Data), len(texts))
	}

	vectors := make([][]float32, len(apiResp.Data))
	for _, d := range apiResp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (o *OpenAIProvider) Dimension() int   { return o.dim }
func (o *OpenAIProvider) Provider() string { return ProviderOpenAI }

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// OllamaProvider calls a local Ollama server's embeddings endpoint.
type OllamaProvider struct {
	baseURL    string
	model      string
	dim        int
	httpClient *http.Client
	cache      *Cache
}

// NewOllamaProvider creates an Ollama-backed embedder.
func NewOllamaProvider(baseURL, model string, dim int, cache *Cache) (*OllamaProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: Ollama URL not set", ErrNoProviderEnabled)
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if dim <= 0 {
		dim = OllamaDimension
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		dim:     dim,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		cache: cache,
	}, nil
}

func (p *OllamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if p.cache != nil {
		if v, ok := p.cache.Get(CacheKey(text)); ok {
			return v, nil
		}
	}

	vector, err := withRetry(ctx, defaultRetryPolicy(), func() ([]float32, error) {
		return p.callAPI(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v", ErrProviderFailed, maxRetries, err)
	}

	if p.cache != nil {
		p.cache.Set(CacheKey(text), vector)
	}
	return vector, nil
}

// EmbedBatch issues one request per text: the Ollama embeddings endpoint
// takes a single prompt.
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (p *OllamaProvider) callAPI(ctx context.Context, text string) ([]float32, error) {
	reqBody := map[string]interface{}{
		"model":  p.model,
		"prompt": text,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return apiResp.Embedding, nil
}

func (p *OllamaProvider) Dimension() int   { return p.dim }
func (p *OllamaProvider) Provider() string { return ProviderOllama }

func (p *OllamaProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// OfflineProvider produces deterministic vectors derived from the text
// itself, with no network dependency. It is the testing stub variant of the
// embedding capability: the same text always yields the same unit-length
// vector, so index updates and retrieval are fully reproducible offline.
type OfflineProvider struct {
	dim int
}

// NewOfflineProvider creates an offline embedder with the given dimension.
func NewOfflineProvider(dim int) (*OfflineProvider, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", ErrDimensionMismatch)
	}
	return &OfflineProvider{dim: dim}, nil
}

func (p *OfflineProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Expand a hash chain over the text until the vector is filled, then
	// normalize to unit length so cosine scores are well-behaved.
	vector := make([]float32, p.dim)
	seed := sha256.Sum256([]byte(text))
	block := seed
	for i := 0; i < p.dim; i++ {
		if i%len(block) == 0 && i > 0 {
			block = sha256.Sum256(block[:])
		}
		vector[i] = float32(block[i%len(block)])/255.0 - 0.5
	}

	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); norm > 0 {
		inv := float32(1.0 / norm)
		for i := range vector {
			vector[i] *= inv
		}
	}
	return vector, nil
}

func (p *OfflineProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (p *OfflineProvider) Dimension() int   { return p.dim }
func (p *OfflineProvider) Provider() string { return ProviderOffline }
func (p *OfflineProvider) Close() error     { return nil }
