package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/reviewpulse/config"
)

func newTestOpenAIClient(t *testing.T, content string) (*OpenAIClient, *[]map[string]any) {
	t.Helper()
	var requests []map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		requests = append(requests, req)

		answer, _ := json.Marshal(content)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%s}}]}`, answer)
	}))
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient(config.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/v1",
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	return client, &requests
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(config.OpenAIConfig{}); err == nil {
		t.Error("expected an error without an API key")
	}
}

func TestOpenAIClient_ClassifyAspect(t *testing.T) {
	client, requests := newTestOpenAIClient(t, `{"label":"neutral","score":0.61}`)

	got, err := client.ClassifyAspect(context.Background(), "The battery is fine.", "battery")
	if err != nil {
		t.Fatalf("ClassifyAspect() error = %v", err)
	}
	if got.Label != "neutral" || got.Score != 0.61 {
		t.Errorf("ClassifyAspect() = %+v", got)
	}

	req := (*requests)[0]
	format, _ := req["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("response_format = %v", req["response_format"])
	}
	messages, _ := req["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v", messages)
	}
	user, _ := messages[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.Contains(content, "Aspect: battery") {
		t.Errorf("user message = %q", content)
	}
}

func TestOpenAIClient_ClassifyGeneralBadAnswer(t *testing.T) {
	client, _ := newTestOpenAIClient(t, "I think it is positive")

	if _, err := client.ClassifyGeneral(context.Background(), "nice"); err == nil {
		t.Error("expected an error for a non-JSON answer")
	}
}

func TestOpenAIClient_Summarize(t *testing.T) {
	client, requests := newTestOpenAIClient(t, "  Buyers like it.  ")

	got, err := client.Summarize(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Buyers like it." {
		t.Errorf("Summarize() = %q", got)
	}
	if _, ok := (*requests)[0]["response_format"]; ok {
		t.Error("summaries should not request JSON output")
	}
}
