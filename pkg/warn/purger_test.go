package warn

import (
	"context"
	"testing"
	"time"
)

func TestPurgerRunOnce(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, Options{})
	ctx := context.Background()

	engine.RegisterWarn(ctx, "U1", nil, "spam", t0)
	engine.RegisterWarn(ctx, "U2", nil, "spam", t0.Add(2*time.Hour))

	p := NewPurger(engine, time.Minute)
	p.now = func() time.Time { return t0.Add(25 * time.Hour) }

	n, err := p.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if n != 1 {
		t.Errorf("RunOnce() = %d, want 1", n)
	}
	if store.size() != 1 {
		t.Errorf("store size = %d, want 1", store.size())
	}
}

func TestPurgerStartStop(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, Options{})
	engine.RegisterWarn(context.Background(), "U1", nil, "spam", t0)

	p := NewPurger(engine, time.Hour)
	p.now = func() time.Time { return t0.Add(48 * time.Hour) }
	p.Start()

	deadline := time.Now().Add(time.Second)
	for store.size() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()
	p.Stop()

	if store.size() != 0 {
		t.Errorf("store size = %d after initial sweep, want 0", store.size())
	}
}

func TestPurgerStopWithoutStart(t *testing.T) {
	p := NewPurger(NewEngine(newMemStore(), Options{}), 0)
	if p.interval != DefaultPurgeInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultPurgeInterval)
	}
	p.Stop()
}
