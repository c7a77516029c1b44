package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/animlab/animutils/pkg/types"
)

func TestSanitizeModelJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"comments", "{\n\"a\":1, // one\n/* block */\"b\":2}", "{\n\"a\":1, \n\"b\":2}"},
		{"trailing comma", `{"a":[1,2,],}`, `{"a":[1,2]}`},
		{"prose around", `Sure! {"a":1} hope that helps`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeModelJSON(tt.in); got != tt.want {
				t.Errorf("sanitizeModelJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDetection(t *testing.T) {
	d := parseDetection("```json\n{\"label\":\"zebrafish\",\"confidence\":0.8,\"box\":{\"x\":0.1,\"y\":0.2,\"w\":0.3,\"h\":0.4},\"tags\":[\"fish\"]}\n```")
	if d.Label != "zebrafish" || d.Confidence != 0.8 {
		t.Errorf("unexpected detection %+v", d)
	}
	if d.Box != (types.Zoom{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}) {
		t.Errorf("box = %+v", d.Box)
	}

	for _, raw := range []string{"I cannot see an image.", `{"label": "fish", "box": }`} {
		d := parseDetection(raw)
		if d.Label != "none" || d.Box != types.FullZoom || d.Confidence != 0 {
			t.Errorf("parseDetection(%q) = %+v, want full-frame fallback", raw, d)
		}
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := NewClient("localhost"); err == nil {
		t.Error("expected error for URL without scheme")
	}
	if _, err := NewClient("http://localhost:11434/api/chat"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLocateRegion(t *testing.T) {
	reply := `{"label":"arena","confidence":0.9,"box":{"x":0.05,"y":0.1,"w":0.9,"h":0.8},"description":"round tank","tags":["tank"]}`
	var gotModel string
	var gotImages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req api.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotModel = req.Model
		if len(req.Messages) > 0 {
			gotImages = len(req.Messages[0].Images)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(api.ChatResponse{
			Model:   req.Model,
			Message: api.Message{Role: "assistant", Content: reply},
			Done:    true,
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL + "/api/chat")
	if err != nil {
		t.Fatal(err)
	}
	c.SetTimeout(10 * time.Second)

	img := base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff})
	d, err := c.LocateRegion(context.Background(), "llava", "where is the arena?", img)
	if err != nil {
		t.Fatalf("LocateRegion failed: %v", err)
	}
	if gotModel != "llava" || gotImages != 1 {
		t.Errorf("server saw model=%q images=%d", gotModel, gotImages)
	}
	if d.Label != "arena" || d.Box.W != 0.9 {
		t.Errorf("unexpected detection %+v", d)
	}

	if _, err := c.LocateRegion(context.Background(), "llava", "x", "not base64!"); err == nil {
		t.Error("expected error for invalid base64")
	}
}
