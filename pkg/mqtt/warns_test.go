package mqtt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/database"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/goccy/go-json"
)

var now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestServeWarns(t *testing.T) {
	mc := NewLocal("test")
	engine := warn.NewEngine(database.NewMemoryWarnStore(), warn.Options{})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := engine.RegisterWarn(ctx, "U1", nil, "spam", now); err != nil {
			t.Fatalf("RegisterWarn() error = %v", err)
		}
	}

	if err := ServeWarns(mc, engine, func() time.Time { return now }); err != nil {
		t.Fatalf("ServeWarns() error = %v", err)
	}

	var count CountReply
	if err := mc.Request("warns/count", SubjectQuery{SubjectID: "U1"}, &count, time.Second); err != nil {
		t.Fatalf("warns/count error = %v", err)
	}
	if count.ActiveCount != 2 || count.NextAction != "timeout(1h0m0s)" {
		t.Errorf("warns/count = %+v, want 2 active and timeout(1h0m0s) next", count)
	}

	var active WarnsReply
	if err := mc.Request("warns/active", SubjectQuery{SubjectID: "U1"}, &active, time.Second); err != nil {
		t.Fatalf("warns/active error = %v", err)
	}
	if len(active.Warns) != 2 {
		t.Errorf("warns/active returned %d warns, want 2", len(active.Warns))
	}

	var history WarnsReply
	if err := mc.Request("warns/history", SubjectQuery{SubjectID: "U2"}, &history, time.Second); err != nil {
		t.Fatalf("warns/history error = %v", err)
	}
	if history.Warns == nil || len(history.Warns) != 0 {
		t.Errorf("warns/history for unknown subject = %v, want empty list", history.Warns)
	}

	err := mc.Request("warns/count", SubjectQuery{}, nil, time.Second)
	if err == nil {
		t.Error("warns/count with empty subject succeeded, want error")
	}
}

func TestEventsPublish(t *testing.T) {
	mc := NewLocal("test")
	got := make(chan []byte, 4)
	_ = mc.Subscribe("pancy/warns/#", func(_ string, payload []byte) { got <- payload })

	events := NewEvents(mc)
	events.PunishmentApplied(warn.Outcome{
		SubjectID: "U1",
		Count:     6,
		Action:    warn.PunishmentFor(6),
		Err:       errors.New("missing permissions"),
	})

	select {
	case payload := <-got:
		var ev PunishmentEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
		if ev.Action != "ban" || ev.Success || ev.Error != "missing permissions" {
			t.Errorf("event = %+v, want failed ban", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("punishment event not delivered")
	}
}

func TestNilEventsAreNoop(t *testing.T) {
	var events *Events
	events.WarnRemoved(1)
	NewEvents(nil).SubjectCleared("U1", 3)
}
