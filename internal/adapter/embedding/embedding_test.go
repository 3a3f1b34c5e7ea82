package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}

		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.EncodingFormat != "float" {
			t.Errorf("expected encoding_format=float, got %s", req.EncodingFormat)
		}

		// Return embeddings out of order to check positional reassembly.
		resp := openAIResponse{Data: make([]openAIData, len(req.Input))}
		for i := range req.Input {
			resp.Data[len(req.Input)-1-i] = openAIData{
				Index:     i,
				Embedding: []float32{float32(i), float32(len(req.Input[i]))},
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	t.Setenv("TEST_OPENAI_KEY", "test-key")
	e, err := NewOpenAIEmbedder("TEST_OPENAI_KEY", "text-embedding-3-small", srv.URL, 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	vecs, err := e.Embed([]string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	if requests != 2 {
		t.Errorf("expected 2 batches for batchSize=2, got %d requests", requests)
	}
	// Positional correspondence: vector i carries len(texts[i]) in its
	// second component.
	for i, want := range []float32{1, 2, 3} {
		if vecs[i][1] != want {
			t.Errorf("vector %d out of position: got %v", i, vecs[i])
		}
	}
}

func TestOpenAIEmbedder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	t.Setenv("TEST_OPENAI_KEY", "test-key")
	e, err := NewOpenAIEmbedder("TEST_OPENAI_KEY", "text-embedding-3-small", srv.URL, 2, 0)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.Embed([]string{"a"})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestOpenAIEmbedder_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	t.Setenv("TEST_OPENAI_KEY", "test-key")
	e, err := NewOpenAIEmbedder("TEST_OPENAI_KEY", "text-embedding-3-small", srv.URL, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed([]string{"a"}); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestOpenAIEmbedder_MissingKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	if _, err := NewOpenAIEmbedder("TEST_OPENAI_KEY", "text-embedding-3-small", "", 0, 0); err == nil {
		t.Fatal("expected error when API key env is empty")
	}
}

func TestCohereEmbedder_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/embed" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req cohereRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.InputType != "classification" {
			t.Errorf("expected input_type=classification, got %s", req.InputType)
		}
		if len(req.EmbeddingTypes) != 1 || req.EmbeddingTypes[0] != "float" {
			t.Errorf("unexpected embedding_types: %v", req.EmbeddingTypes)
		}

		resp := cohereResponse{}
		for i := range req.Texts {
			resp.Embeddings.Float = append(resp.Embeddings.Float, []float32{float32(i), 1})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	t.Setenv("TEST_CO_KEY", "test-key")
	e, err := NewCohereEmbedder("TEST_CO_KEY", "embed-english-v3.0", srv.URL, "", 2, 0)
	if err != nil {
		t.Fatal(err)
	}

	vecs, err := e.Embed([]string{"x", "y"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vecs) != 2 || vecs[1][0] != 1 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
	if e.Dimension() != 2 {
		t.Errorf("expected dimension 2, got %d", e.Dimension())
	}
}

func TestCohereEmbedder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(cohereResponse{
			Embeddings: cohereEmbeddings{Float: [][]float32{{1, 2}}},
		})
	}))
	defer srv.Close()

	t.Setenv("TEST_CO_KEY", "test-key")
	e, err := NewCohereEmbedder("TEST_CO_KEY", "embed-english-v3.0", srv.URL, "", 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Embed([]string{"a", "b"}); err == nil {
		t.Fatal("expected error when embedding count disagrees with input count")
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(4)
	a, err := e.Embed([]string{"hello"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed([]string{"hello"})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("mock embedder not deterministic at component %d", i)
		}
	}
	if len(a[0]) != 4 {
		t.Errorf("expected dimension 4, got %d", len(a[0]))
	}
}
