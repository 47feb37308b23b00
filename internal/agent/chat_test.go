package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

func TestChatAct(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<guess>[crane]</guess>"}}]}`))
	}))
	defer srv.Close()

	c := NewChat(ChatConfig{BaseURL: srv.URL + "/", APIKey: "k", Model: "m"})
	tr := reward.Transcript{
		{Role: reward.RoleSystem, Content: "sys"},
		{Role: reward.RoleUser, Content: "Welcome to Wordle!"},
	}
	reply, err := c.Act(context.Background(), tr)
	if err != nil {
		t.Fatalf("Act: %v", err)
	}
	if reply != "<guess>[crane]</guess>" {
		t.Fatalf("reply = %q", reply)
	}
	if got.Model != "m" || len(got.Messages) != 2 || got.Messages[0].Role != reward.RoleSystem {
		t.Fatalf("request = %+v", got)
	}
	if c.Name() != "chat:m" {
		t.Fatalf("Name = %q", c.Name())
	}
}

func TestChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"nope"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()
	_, err := NewChat(ChatConfig{BaseURL: srv.URL}).Act(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v", err)
	}
}
