package mqtt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		pattern, topic string
		want           bool
	}{
		{"pancy/warns/registered", "pancy/warns/registered", true},
		{"pancy/warns/+", "pancy/warns/removed", true},
		{"pancy/warns/+", "pancy/warns/removed/extra", false},
		{"pancy/#", "pancy/warns/cleared", true},
		{"pancy/#", "pancy", true},
		{"pancy/+/count", "pancy/request/count", true},
		{"pancy/warns", "pancy/warns/registered", false},
		{"pancy/warns/registered", "pancy/warns", false},
		{"other/#", "pancy/warns", false},
	}

	for _, tt := range tests {
		if got := topicMatch(tt.pattern, tt.topic); got != tt.want {
			t.Errorf("topicMatch(%q, %q) = %v, want %v", tt.pattern, tt.topic, got, tt.want)
		}
	}
}

func TestLocalPublishSubscribe(t *testing.T) {
	mc := NewLocal("test")
	got := make(chan string, 1)

	if err := mc.Subscribe("pancy/warns/#", func(topic string, payload []byte) {
		got <- topic + " " + string(payload)
	}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if err := mc.Publish("pancy/warns/removed", map[string]int{"id": 7}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-got:
		if want := `pancy/warns/removed {"id":7}`; msg != want {
			t.Errorf("message = %q, want %q", msg, want)
		}
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestRequestResponse(t *testing.T) {
	mc := NewLocal("test")

	err := mc.On("echo", func(topic string, payload json.RawMessage) (any, error) {
		var in struct{ Text string }
		if err := json.Unmarshal(payload, &in); err != nil {
			return nil, err
		}
		return map[string]string{"topic": topic, "text": strings.ToUpper(in.Text)}, nil
	})
	if err != nil {
		t.Fatalf("On() error = %v", err)
	}

	var out map[string]string
	if err := mc.Request("echo", map[string]string{"text": "hola"}, &out, time.Second); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if out["text"] != "HOLA" || out["topic"] != "echo" {
		t.Errorf("Request() = %v, want text HOLA on topic echo", out)
	}
}

func TestRequestError(t *testing.T) {
	mc := NewLocal("test")
	_ = mc.On("fail", func(string, json.RawMessage) (any, error) {
		return nil, errors.New("boom")
	})

	err := mc.Request("fail", nil, nil, time.Second)
	if err == nil || err.Error() != "boom" {
		t.Errorf("Request() error = %v, want boom", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	mc := NewLocal("test")

	err := mc.Request("nobody", nil, nil, 20*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "expirado") {
		t.Errorf("Request() error = %v, want timeout", err)
	}

	mc.mu.RLock()
	pending := len(mc.responseHandlers)
	mc.mu.RUnlock()
	if pending != 0 {
		t.Errorf("pending handlers = %d, want 0", pending)
	}
}

func TestDestroyClosesLocalBus(t *testing.T) {
	mc := NewLocal("test")
	if !mc.IsConnected() {
		t.Fatal("IsConnected() = false before Destroy")
	}
	mc.Destroy()
	if mc.IsConnected() {
		t.Error("IsConnected() = true after Destroy")
	}
	if err := mc.Publish("x", 1); err == nil {
		t.Error("Publish() after Destroy succeeded")
	}
}
