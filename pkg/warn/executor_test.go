package warn

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type moderatorCall struct {
	kind     string
	subject  string
	duration time.Duration
	reason   string
}

type fakeModerator struct {
	mu    sync.Mutex
	calls []moderatorCall
	err   error
	panic bool
}

func (m *fakeModerator) record(c moderatorCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panic {
		panic("discord session closed")
	}
	m.calls = append(m.calls, c)
	return m.err
}

func (m *fakeModerator) Timeout(ctx context.Context, subjectID string, d time.Duration, reason string) error {
	return m.record(moderatorCall{"timeout", subjectID, d, reason})
}

func (m *fakeModerator) Kick(ctx context.Context, subjectID string, reason string) error {
	return m.record(moderatorCall{"kick", subjectID, 0, reason})
}

func (m *fakeModerator) Ban(ctx context.Context, subjectID string, reason string) error {
	return m.record(moderatorCall{"ban", subjectID, 0, reason})
}

func (m *fakeModerator) snapshot() []moderatorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]moderatorCall(nil), m.calls...)
}

func TestExecutorApply(t *testing.T) {
	tests := []struct {
		name   string
		count  int
		want   string
		wantD  time.Duration
		called bool
	}{
		{"none", 1, "", 0, false},
		{"timeout", 2, "timeout", 10 * time.Minute, true},
		{"final warning", 5, "timeout", 72 * time.Hour, true},
		{"ban", 6, "ban", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := &fakeModerator{}
			x := NewExecutor(mod, ExecutorOptions{})

			if err := x.Apply(context.Background(), "U1", tt.count, PunishmentFor(tt.count)); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			calls := mod.snapshot()
			if !tt.called {
				if len(calls) != 0 {
					t.Errorf("Apply() made %d calls, want 0", len(calls))
				}
				return
			}
			if len(calls) != 1 {
				t.Fatalf("Apply() made %d calls, want 1", len(calls))
			}
			c := calls[0]
			if c.kind != tt.want || c.duration != tt.wantD || c.subject != "U1" {
				t.Errorf("Apply() call = %+v, want %s %v", c, tt.want, tt.wantD)
			}
			if c.reason != PunishmentReason(tt.count, PunishmentFor(tt.count)) {
				t.Errorf("Apply() reason = %q", c.reason)
			}
		})
	}
}

func TestExecutorApplyFailure(t *testing.T) {
	cause := errors.New("Missing Permissions")
	x := NewExecutor(&fakeModerator{err: cause}, ExecutorOptions{})

	err := x.Apply(context.Background(), "U1", 3, PunishmentFor(3))
	if !errors.Is(err, ErrPunishmentExecution) {
		t.Errorf("Apply() error = %v, want ErrPunishmentExecution", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Apply() error = %v, want wrapped cause", err)
	}
	if errors.Is(err, ErrPersistence) {
		t.Errorf("Apply() error = %v must not be a persistence error", err)
	}

	var perr *PunishmentError
	if !errors.As(err, &perr) {
		t.Fatalf("Apply() error type = %T, want *PunishmentError", err)
	}
	if perr.SubjectID != "U1" || perr.Count != 3 || perr.Action != Timeout(time.Hour) {
		t.Errorf("PunishmentError = %+v", perr)
	}
}

func TestExecutorRecoversPanic(t *testing.T) {
	x := NewExecutor(&fakeModerator{panic: true}, ExecutorOptions{})

	err := x.Apply(context.Background(), "U1", 6, BanAction)
	if !errors.Is(err, ErrPunishmentExecution) {
		t.Errorf("Apply() error = %v, want ErrPunishmentExecution", err)
	}
}

func TestExecutorExecuteAsync(t *testing.T) {
	mod := &fakeModerator{err: errors.New("Unknown Member")}

	var mu sync.Mutex
	var outcomes []Outcome
	x := NewExecutor(mod, ExecutorOptions{
		Timeout: time.Second,
		OnOutcome: func(o Outcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		},
	})

	x.Execute("U1", 1, NoPunishment)
	x.Execute("U1", 2, PunishmentFor(2))
	x.Execute("U2", 6, PunishmentFor(6))
	x.Wait()

	if got := len(mod.snapshot()); got != 2 {
		t.Errorf("moderator calls = %d, want 2", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if !errors.Is(o.Err, ErrPunishmentExecution) {
			t.Errorf("outcome error = %v, want ErrPunishmentExecution", o.Err)
		}
	}
}

func TestRegisterThenPunishFailureKeepsWarn(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, Options{})
	x := NewExecutor(&fakeModerator{err: errors.New("Unknown Member")}, ExecutorOptions{})
	ctx := context.Background()

	engine.RegisterWarn(ctx, "U1", nil, "spam", t0)
	res, err := engine.RegisterWarn(ctx, "U1", nil, "spam", t0)
	if err != nil {
		t.Fatalf("RegisterWarn() error = %v", err)
	}
	if err := x.Apply(ctx, "U1", res.ActiveCount, res.Action); err == nil {
		t.Fatal("Apply() error = nil, want failure")
	}

	if n, _ := engine.CountActiveWarns(ctx, "U1", t0); n != 2 {
		t.Errorf("CountActiveWarns() = %d, want 2", n)
	}
}
