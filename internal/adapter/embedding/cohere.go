package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	cohereDefaultBaseURL = "https://api.cohere.com"

	// Cohere caps embed requests at 96 texts.
	cohereMaxBatch = 96
)

// CohereEmbedder talks to the Cohere v2 embed API.
type CohereEmbedder struct {
	apiKey    string
	model     string
	baseURL   string
	inputType string
	dimension int
	batchSize int
	client    *http.Client
}

type cohereRequest struct {
	Model          string   `json:"model"`
	Texts          []string `json:"texts"`
	InputType      string   `json:"input_type"`
	EmbeddingTypes []string `json:"embedding_types"`
}

type cohereResponse struct {
	Embeddings cohereEmbeddings `json:"embeddings"`
	Message    string           `json:"message,omitempty"`
}

type cohereEmbeddings struct {
	Float [][]float32 `json:"float"`
}

// NewCohereEmbedder reads the API key from the named environment variable.
// An empty baseURL selects the public endpoint; an empty inputType defaults
// to "classification"; dimension defaults to the model's published width.
func NewCohereEmbedder(apiKeyEnv, model, baseURL, inputType string, dimension, batchSize int) (*CohereEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if baseURL == "" {
		baseURL = cohereDefaultBaseURL
	}
	if inputType == "" {
		inputType = "classification"
	}
	if dimension <= 0 {
		dimension = cohereModelDimension(model)
	}
	if batchSize <= 0 || batchSize > cohereMaxBatch {
		batchSize = cohereMaxBatch
	}

	return &CohereEmbedder{
		apiKey:    apiKey,
		model:     model,
		baseURL:   baseURL,
		inputType: inputType,
		dimension: dimension,
		batchSize: batchSize,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

func cohereModelDimension(model string) int {
	switch model {
	case "embed-english-light-v3.0", "embed-multilingual-light-v3.0":
		return 384
	case "embed-english-v3.0", "embed-multilingual-v3.0":
		return 1024
	}
	return 1024
}

// Embed generates one vector per input text, in order.
func (e *CohereEmbedder) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embedBatch(texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (e *CohereEmbedder) embedBatch(texts []string) ([][]float32, error) {
	reqBody := cohereRequest{
		Model:          e.model,
		Texts:          texts,
		InputType:      e.inputType,
		EmbeddingTypes: []string{"float"},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", e.baseURL+"/v2/embed", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var embResp cohereResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (body: %s): %w", truncateBody(body), err)
	}
	if len(embResp.Embeddings.Float) != len(texts) {
		return nil, fmt.Errorf("API returned %d embeddings for %d inputs", len(embResp.Embeddings.Float), len(texts))
	}
	return embResp.Embeddings.Float, nil
}

// Dimension returns the embedding vector dimension.
func (e *CohereEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns the name of the embedding model.
func (e *CohereEmbedder) ModelName() string {
	return e.model
}
