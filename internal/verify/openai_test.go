package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(OpenAIConfig{}); err == nil {
		t.Fatalf("expected api key error")
	}
}

func TestDefaultsFor(t *testing.T) {
	d, err := DefaultsFor("Groq")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if d.Model == "" || d.BaseURL == "" {
		t.Fatalf("expected groq defaults, got %+v", d)
	}
	if _, err := DefaultsFor("unknown"); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}

func TestOpenAIClientComplete(t *testing.T) {
	var got map[string]any
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"judge-model",`+
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Yes"}}]}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "key", BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	reply, err := client.Complete(context.Background(), ChatRequest{
		Model: "judge-model",
		Messages: []Message{
			{Role: "system", Content: "judge"},
			{Role: "user", Content: "q"},
			{Role: "assistant", Content: "Yes"},
			{Role: "user", Content: "live"},
		},
		MaxTokens: 10,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "Yes" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if auth != "Bearer key" {
		t.Fatalf("unexpected authorization header %q", auth)
	}
	if got["model"] != "judge-model" {
		t.Fatalf("unexpected model %v", got["model"])
	}
	if temp, ok := got["temperature"]; !ok || temp.(float64) != 0 {
		t.Fatalf("expected temperature 0, got %v", got["temperature"])
	}
	messages, ok := got["messages"].([]any)
	if !ok || len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %v", got["messages"])
	}
}

func TestOpenAIClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"boom","type":"server_error"}}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "key", BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Complete(context.Background(), ChatRequest{
		Model:    "judge-model",
		Messages: []Message{{Role: "user", Content: "q"}},
	}); err == nil {
		t.Fatalf("expected error from server failure")
	}
}
