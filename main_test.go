package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/blogforge/backend/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func estimateRouter() *gin.Engine {
	cfg := &config.Config{
		Provider:    config.ProviderOpenAI,
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.0-flash",
	}
	r := gin.New()
	r.POST("/api/estimate-cost", estimateCost(cfg))
	return r
}

func TestEstimateCostContract(t *testing.T) {
	r := estimateRouter()

	w := httptest.NewRecorder()
	body := `{"url": "https://example.com/post", "word_count": 1200}`
	req := httptest.NewRequest(http.MethodPost, "/api/estimate-cost", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		URL       string  `json:"url"`
		WordCount int     `json:"word_count"`
		Cost      float64 `json:"estimated_cost_usd"`
		Provider  string  `json:"provider"`
		Model     string  `json:"model"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if resp.URL != "https://example.com/post" {
		t.Errorf("url = %q, not echoed", resp.URL)
	}
	if resp.WordCount != 1200 {
		t.Errorf("word_count = %d, want 1200", resp.WordCount)
	}
	if resp.Cost <= 0 {
		t.Errorf("estimated_cost_usd = %v, want > 0", resp.Cost)
	}
	if resp.Provider != config.ProviderOpenAI {
		t.Errorf("provider = %q, want openai", resp.Provider)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", resp.Model)
	}
}

func TestEstimateCostBoundsWordCount(t *testing.T) {
	r := estimateRouter()

	tests := []struct {
		body string
		want int
	}{
		{`{"url": "https://example.com", "word_count": 50}`, 300},
		{`{"url": "https://example.com", "word_count": 50000}`, 2000},
		{`{"url": "https://example.com"}`, 800},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/estimate-cost", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d for %s, want 200", w.Code, tt.body)
		}

		var resp struct {
			WordCount int `json:"word_count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.WordCount != tt.want {
			t.Errorf("word_count for %s = %d, want %d", tt.body, resp.WordCount, tt.want)
		}
	}
}
