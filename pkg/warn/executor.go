package warn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
)

// DefaultPunishmentTimeout bounds a single platform call made by the Executor.
const DefaultPunishmentTimeout = 15 * time.Second

// Moderator is the platform capability the Executor drives.
type Moderator interface {
	Timeout(ctx context.Context, subjectID string, d time.Duration, reason string) error
	Kick(ctx context.Context, subjectID string, reason string) error
	Ban(ctx context.Context, subjectID string, reason string) error
}

// Outcome reports what happened to one punishment.
type Outcome struct {
	SubjectID string
	Count     int
	Action    PunishmentAction
	Err       error
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// Timeout bounds each platform call. Zero means DefaultPunishmentTimeout.
	Timeout time.Duration
	// OnOutcome, when set, is called after every executed punishment.
	OnOutcome func(Outcome)
}

// Executor turns punishment decisions into platform actions. Execute is
// fire-and-forget; its failures never reach the warn that caused them.
type Executor struct {
	moderator Moderator
	timeout   time.Duration
	onOutcome func(Outcome)
	wg        sync.WaitGroup
}

func NewExecutor(moderator Moderator, opts ExecutorOptions) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPunishmentTimeout
	}
	return &Executor{
		moderator: moderator,
		timeout:   opts.Timeout,
		onOutcome: opts.OnOutcome,
	}
}

// Execute applies action in the background. NoPunishment returns immediately.
func (x *Executor) Execute(subjectID string, count int, action PunishmentAction) {
	if action.Kind == PunishmentNone {
		return
	}

	x.wg.Add(1)
	go func() {
		defer x.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), x.timeout)
		defer cancel()
		_ = x.Apply(ctx, subjectID, count, action)
	}()
}

// Apply runs action synchronously. A non-nil error is always a *PunishmentError.
func (x *Executor) Apply(ctx context.Context, subjectID string, count int, action PunishmentAction) (err error) {
	if action.Kind == PunishmentNone {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = &PunishmentError{SubjectID: subjectID, Count: count, Action: action, Err: fmt.Errorf("panic: %v", r)}
			x.report(subjectID, count, action, err)
		}
	}()

	reason := PunishmentReason(count, action)
	var callErr error
	switch action.Kind {
	case PunishmentBan:
		callErr = x.moderator.Ban(ctx, subjectID, reason)
	case PunishmentTimeout, PunishmentTimeoutFinalWarning:
		callErr = x.moderator.Timeout(ctx, subjectID, action.Duration, reason)
	default:
		callErr = fmt.Errorf("unknown punishment kind %d", action.Kind)
	}

	if callErr != nil {
		err = &PunishmentError{SubjectID: subjectID, Count: count, Action: action, Err: callErr}
	}
	x.report(subjectID, count, action, err)
	return err
}

// Wait blocks until every punishment started by Execute has finished.
func (x *Executor) Wait() {
	x.wg.Wait()
}

func (x *Executor) report(subjectID string, count int, action PunishmentAction, err error) {
	entry := logger.WithFields("Punishment", logger.Fields{
		"stage":   "punishment",
		"subject": subjectID,
		"count":   count,
		"action":  action.String(),
	})
	if err != nil {
		punishmentFailures.WithLabelValues(action.Kind.String()).Inc()
		entry.Error(fmt.Sprintf("No se pudo aplicar la sanción (la advertencia sigue registrada): %v", err))
	} else {
		punishmentsApplied.WithLabelValues(action.Kind.String()).Inc()
		entry.Success(fmt.Sprintf("Sanción aplicada: %s", action.Description()))
	}

	if x.onOutcome != nil {
		x.onOutcome(Outcome{SubjectID: subjectID, Count: count, Action: action, Err: err})
	}
}
