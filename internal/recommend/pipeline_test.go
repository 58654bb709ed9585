package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ikarus-labs/recommender/internal/config"
	"github.com/ikarus-labs/recommender/internal/llm"
	"github.com/ikarus-labs/recommender/internal/vectorstore"
)

// --- Mocks ---

type mockIndex struct {
	matches []vectorstore.Match
	err     error
	calls   int
	lastK   int
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]vectorstore.Match, error) {
	m.calls++
	m.lastK = k
	return m.matches, m.err
}

func (m *mockIndex) Ping(context.Context) error { return m.err }

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedder) EmbedSingle(context.Context, string) ([]float32, error) {
	m.calls++
	return m.vec, m.err
}

type mockGateway struct {
	content   string
	chatErr   error
	chatCalls int
	lastReq   llm.ChatRequest
}

func (m *mockGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.chatCalls++
	m.lastReq = req
	if m.chatErr != nil {
		return nil, m.chatErr
	}
	return &llm.ChatResponse{Content: m.content}, nil
}

func (m *mockGateway) Embed(context.Context, llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not used")
}

func (m *mockGateway) Provider(string) (llm.Provider, error) {
	return nil, errors.New("not used")
}

func newTestPipeline(t *testing.T, index *mockIndex, embed *mockEmbedder, gw *mockGateway, topK int) Pipeline {
	t.Helper()
	p, err := NewPipeline(index, embed, gw,
		config.LLMConfig{
			Model:       "test-model",
			Temperature: 0.7,
			MaxTokens:   300,
			Timeout:     time.Minute,
		},
		config.RetrievalConfig{
			TopK:    topK,
			Timeout: time.Minute,
		},
		nil,
	)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func twoSofas() []vectorstore.Match {
	return []vectorstore.Match{
		{Product: vectorstore.Product{
			UniqID: "p-1", Title: "Modern Blue Sofa", Brand: "Ikarus",
			Price: "$599.00", Description: "Three-seat sofa in blue fabric.",
			PrimaryImage: "https://img.example.com/p-1.jpg",
		}, Score: 0.91},
		{Product: vectorstore.Product{
			UniqID: "p-2", Title: "Navy Loveseat", Brand: "Ikarus",
			Price: "$349.00", Description: "Compact two-seat navy loveseat.",
			PrimaryImage: "https://img.example.com/p-2.jpg",
		}, Score: 0.84},
	}
}

// --- Tests ---

func TestRecommendHappyPath(t *testing.T) {
	index := &mockIndex{matches: twoSofas()}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	gw := &mockGateway{content: "Two great blue options."}

	p := newTestPipeline(t, index, embed, gw, 5)

	rec, err := p.Recommend(context.Background(), "modern blue sofa")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if rec.GeneratedDescription != "Two great blue options." {
		t.Errorf("GeneratedDescription = %q", rec.GeneratedDescription)
	}
	if len(rec.RetrievedProducts) != 2 {
		t.Fatalf("got %d retrieved products, want 2", len(rec.RetrievedProducts))
	}
	first := rec.RetrievedProducts[0]
	if first.UniqID != "p-1" || first.Title != "Modern Blue Sofa" || first.Brand != "Ikarus" ||
		first.Price != "$599.00" || first.PrimaryImage != "https://img.example.com/p-1.jpg" {
		t.Errorf("unexpected projection: %+v", first)
	}

	if gw.chatCalls != 1 {
		t.Errorf("gateway called %d times, want 1", gw.chatCalls)
	}
	promptText := gw.lastReq.Messages[0].Content
	i1 := strings.Index(promptText, "Modern Blue Sofa")
	i2 := strings.Index(promptText, "Navy Loveseat")
	if i1 < 0 || i2 < 0 || i1 > i2 {
		t.Errorf("prompt must contain both titles in rank order:\n%s", promptText)
	}
	if !strings.Contains(promptText, `User's Request: "modern blue sofa"`) {
		t.Errorf("prompt missing the user query:\n%s", promptText)
	}
	if index.lastK != 5 {
		t.Errorf("searched with k=%d, want 5", index.lastK)
	}
}

func TestRecommendEmptyRetrievalStillGenerates(t *testing.T) {
	index := &mockIndex{}
	embed := &mockEmbedder{vec: []float32{0.1}}
	gw := &mockGateway{content: "Sorry, nothing matched."}

	p := newTestPipeline(t, index, embed, gw, 5)

	rec, err := p.Recommend(context.Background(), "levitating bookshelf")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if gw.chatCalls != 1 {
		t.Errorf("gateway called %d times, want 1 (empty retrieval is not failure)", gw.chatCalls)
	}
	if !strings.Contains(gw.lastReq.Messages[0].Content, NoMatchesContext) {
		t.Errorf("prompt must carry the sentinel context:\n%s", gw.lastReq.Messages[0].Content)
	}
	if rec.RetrievedProducts == nil || len(rec.RetrievedProducts) != 0 {
		t.Errorf("RetrievedProducts = %#v, want empty non-nil slice", rec.RetrievedProducts)
	}
}

func TestRecommendIndexUnavailableShortCircuits(t *testing.T) {
	index := &mockIndex{err: vectorstore.ErrIndexUnavailable}
	embed := &mockEmbedder{vec: []float32{0.1}}
	gw := &mockGateway{content: "never"}

	p := newTestPipeline(t, index, embed, gw, 5)

	_, err := p.Recommend(context.Background(), "sofa")
	if !errors.Is(err, ErrRetrievalUnavailable) {
		t.Fatalf("err = %v, want ErrRetrievalUnavailable", err)
	}
	if !Unavailable(err) {
		t.Error("retrieval failure must classify as service-unavailable")
	}
	if gw.chatCalls != 0 {
		t.Errorf("gateway called %d times after retrieval failure, want 0", gw.chatCalls)
	}
}

func TestRecommendEmbeddingUnavailable(t *testing.T) {
	index := &mockIndex{}
	embed := &mockEmbedder{err: errors.New("model not loaded")}
	gw := &mockGateway{}

	p := newTestPipeline(t, index, embed, gw, 5)

	_, err := p.Recommend(context.Background(), "sofa")
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("err = %v, want ErrEmbeddingUnavailable", err)
	}
	if !Unavailable(err) {
		t.Error("embedding failure must classify as service-unavailable")
	}
	if index.calls != 0 {
		t.Errorf("index searched %d times without an embedding, want 0", index.calls)
	}
}

func TestRecommendGenerationFailureIsRequestLevel(t *testing.T) {
	index := &mockIndex{matches: twoSofas()}
	embed := &mockEmbedder{vec: []float32{0.1}}
	gw := &mockGateway{chatErr: errors.New("malformed backend response")}

	p := newTestPipeline(t, index, embed, gw, 5)

	_, err := p.Recommend(context.Background(), "sofa")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("err = %v, want ErrGeneration", err)
	}
	if Unavailable(err) {
		t.Error("generation failure is request-level, not service-unavailable")
	}
}

func TestRecommendGenerationUnreachable(t *testing.T) {
	index := &mockIndex{matches: twoSofas()}
	embed := &mockEmbedder{vec: []float32{0.1}}
	gw := &mockGateway{chatErr: fmt.Errorf("dial tcp: %w", llm.ErrBackendUnreachable)}

	p := newTestPipeline(t, index, embed, gw, 5)

	_, err := p.Recommend(context.Background(), "sofa")
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}
}

func TestRecommendGenerationTimeout(t *testing.T) {
	index := &mockIndex{matches: twoSofas()}
	embed := &mockEmbedder{vec: []float32{0.1}}
	gw := &mockGateway{chatErr: fmt.Errorf("call: %w", context.DeadlineExceeded)}

	p := newTestPipeline(t, index, embed, gw, 5)

	_, err := p.Recommend(context.Background(), "sofa")
	if !errors.Is(err, ErrGenerationTimeout) {
		t.Fatalf("err = %v, want ErrGenerationTimeout", err)
	}
}

func TestRecommendEmptyCompletionIsValid(t *testing.T) {
	index := &mockIndex{matches: twoSofas()}
	embed := &mockEmbedder{vec: []float32{0.1}}
	gw := &mockGateway{content: ""}

	p := newTestPipeline(t, index, embed, gw, 5)

	rec, err := p.Recommend(context.Background(), "sofa")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.GeneratedDescription != "" {
		t.Errorf("GeneratedDescription = %q, want empty", rec.GeneratedDescription)
	}
}

func TestRetrieverCapsAtTopK(t *testing.T) {
	many := append(twoSofas(), vectorstore.Match{
		Product: vectorstore.Product{UniqID: "p-3", Title: "Extra"},
	})
	index := &mockIndex{matches: many}
	embed := &mockEmbedder{vec: []float32{0.1}}

	r := NewRetriever(index, embed, 2, 0)
	matches, err := r.Retrieve(context.Background(), "sofa")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want top-k cap of 2", len(matches))
	}
}

func TestNewGeneratorRejectsBadOptions(t *testing.T) {
	gw := &mockGateway{}

	if _, err := NewGenerator(gw, "m", 1.5, 100, 0); err == nil {
		t.Error("expected error for temperature 1.5")
	}
	if _, err := NewGenerator(gw, "m", -0.1, 100, 0); err == nil {
		t.Error("expected error for temperature -0.1")
	}
	if _, err := NewGenerator(gw, "m", 0.5, 0, 0); err == nil {
		t.Error("expected error for max tokens 0")
	}
}
