package warn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/models"
)

// DefaultStoreTimeout bounds every store call made by the engine.
const DefaultStoreTimeout = 5 * time.Second

// Options configures an Engine.
type Options struct {
	// StoreTimeout bounds each store call. Zero means DefaultStoreTimeout.
	StoreTimeout time.Duration
	// Locker serialises RegisterWarn per subject. Nil disables serialisation.
	Locker Locker
}

// Engine applies the warn lifecycle rules on top of a Store.
// It holds no state of its own beyond its collaborators.
type Engine struct {
	store        Store
	locker       Locker
	storeTimeout time.Duration
}

// Result is the outcome of a successful RegisterWarn.
type Result struct {
	ActiveCount int
	Action      PunishmentAction
	Warn        models.Warn
}

// NewEngine creates an Engine backed by store.
func NewEngine(store Store, opts Options) *Engine {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	return &Engine{
		store:        store,
		locker:       opts.Locker,
		storeTimeout: opts.StoreTimeout,
	}
}

// Store returns the underlying store.
func (e *Engine) Store() Store {
	return e.store
}

// RegisterWarn records a warn against subjectID and returns the new active count
// with the punishment it calls for. The punishment is not executed here.
func (e *Engine) RegisterWarn(ctx context.Context, subjectID string, issuerID *string, reason string, now time.Time) (Result, error) {
	reason = strings.TrimSpace(reason)
	if err := validateWarn(subjectID, reason); err != nil {
		warnRegisterErrors.WithLabelValues("invalid_input").Inc()
		return Result{}, err
	}
	if issuerID != nil && *issuerID == "" {
		issuerID = nil
	}
	now = now.Truncate(time.Millisecond)

	log := logger.WithFields("WarnEngine", logger.Fields{"stage": "registration", "subject": subjectID})

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, "warn:"+subjectID)
		if err != nil {
			warnRegisterErrors.WithLabelValues("lock").Inc()
			log.Error(fmt.Sprintf("Registro de advertencia fallido, no se pudo bloquear el sujeto: %v", err))
			return Result{}, persistence("lock subject", err)
		}
		defer unlock()
	}

	if purged, err := e.purgeSubject(ctx, subjectID, now); err != nil {
		log.Warn(fmt.Sprintf("No se pudieron purgar advertencias expiradas: %v", err))
	} else if purged > 0 {
		log.Debug(fmt.Sprintf("%d advertencias expiradas purgadas", purged))
	}

	var current int
	err := e.call(ctx, "count_active", func(ctx context.Context) error {
		var err error
		current, err = e.store.CountActive(ctx, subjectID, now)
		return err
	})
	if err != nil {
		warnRegisterErrors.WithLabelValues("persistence").Inc()
		log.Error(fmt.Sprintf("Registro de advertencia fallido al contar advertencias activas: %v", err))
		return Result{}, persistence("count active warns", err)
	}

	count := current + 1
	w := models.Warn{
		SubjectID: subjectID,
		IssuerID:  issuerID,
		Reason:    reason,
		IssuedAt:  now,
		ExpiresAt: ExpirationFor(count, now),
	}

	err = e.call(ctx, "insert", func(ctx context.Context) error {
		var err error
		w.ID, err = e.store.Insert(ctx, w)
		return err
	})
	if err != nil {
		warnRegisterErrors.WithLabelValues("persistence").Inc()
		log.Error(fmt.Sprintf("Registro de advertencia fallido al guardar: %v", err))
		return Result{}, persistence("insert warn", err)
	}

	action := PunishmentFor(count)
	warnsRegistered.WithLabelValues(action.Kind.String()).Inc()
	logger.WithFields("WarnEngine", logger.Fields{
		"stage":   "registration",
		"subject": subjectID,
		"warn_id": w.ID,
		"count":   count,
		"action":  action.String(),
	}).Success(fmt.Sprintf("Advertencia %d/%d registrada", count, BanThreshold))

	return Result{ActiveCount: count, Action: action, Warn: w}, nil
}

// GetActiveWarns purges the subject's expired warns, then lists the active ones oldest first.
func (e *Engine) GetActiveWarns(ctx context.Context, subjectID string, now time.Time) ([]models.Warn, error) {
	if err := validateSubject(subjectID); err != nil {
		return nil, err
	}
	now = now.Truncate(time.Millisecond)
	e.purgeQuietly(ctx, subjectID, now)

	var warns []models.Warn
	err := e.call(ctx, "list_active", func(ctx context.Context) error {
		var err error
		warns, err = e.store.ListActive(ctx, subjectID, now)
		return err
	})
	if err != nil {
		return nil, persistence("list active warns", err)
	}
	return warns, nil
}

// CountActiveWarns purges the subject's expired warns, then counts the active ones.
func (e *Engine) CountActiveWarns(ctx context.Context, subjectID string, now time.Time) (int, error) {
	if err := validateSubject(subjectID); err != nil {
		return 0, err
	}
	now = now.Truncate(time.Millisecond)
	e.purgeQuietly(ctx, subjectID, now)

	var n int
	err := e.call(ctx, "count_active", func(ctx context.Context) error {
		var err error
		n, err = e.store.CountActive(ctx, subjectID, now)
		return err
	})
	if err != nil {
		return 0, persistence("count active warns", err)
	}
	return n, nil
}

// GetWarnHistory lists every stored warn of the subject, newest first.
func (e *Engine) GetWarnHistory(ctx context.Context, subjectID string) ([]models.Warn, error) {
	if err := validateSubject(subjectID); err != nil {
		return nil, err
	}

	var warns []models.Warn
	err := e.call(ctx, "list_history", func(ctx context.Context) error {
		var err error
		warns, err = e.store.ListHistory(ctx, subjectID)
		return err
	})
	if err != nil {
		return nil, persistence("list warn history", err)
	}
	return warns, nil
}

// RemoveWarn deletes one warn. A missing id is not an error.
func (e *Engine) RemoveWarn(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}

	var n int
	err := e.call(ctx, "delete_by_id", func(ctx context.Context) error {
		var err error
		n, err = e.store.DeleteByID(ctx, id)
		return err
	})
	if err != nil {
		return false, persistence("delete warn", err)
	}
	if n > 0 {
		warnsRemoved.WithLabelValues("manual").Add(float64(n))
		logger.Info(fmt.Sprintf("Advertencia #%d eliminada manualmente", id), "WarnEngine")
	}
	return n > 0, nil
}

// ClearSubject deletes every warn of the subject and returns how many were removed.
func (e *Engine) ClearSubject(ctx context.Context, subjectID string) (int, error) {
	if err := validateSubject(subjectID); err != nil {
		return 0, err
	}

	var n int
	err := e.call(ctx, "delete_by_subject", func(ctx context.Context) error {
		var err error
		n, err = e.store.DeleteBySubject(ctx, subjectID)
		return err
	})
	if err != nil {
		return 0, persistence("clear subject", err)
	}
	if n > 0 {
		warnsRemoved.WithLabelValues("clear").Add(float64(n))
		logger.WithFields("WarnEngine", logger.Fields{"subject": subjectID}).
			Info(fmt.Sprintf("%d advertencias eliminadas", n))
	}
	return n, nil
}

// PurgeExpired deletes every warn that expired at or before now.
func (e *Engine) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	now = now.Truncate(time.Millisecond)

	var n int
	err := e.call(ctx, "delete_expired", func(ctx context.Context) error {
		var err error
		n, err = e.store.DeleteExpired(ctx, now)
		return err
	})
	if err != nil {
		return 0, persistence("purge expired warns", err)
	}
	if n > 0 {
		warnsRemoved.WithLabelValues("expired").Add(float64(n))
	}
	return n, nil
}

func (e *Engine) purgeSubject(ctx context.Context, subjectID string, now time.Time) (int, error) {
	var n int
	err := e.call(ctx, "delete_expired_subject", func(ctx context.Context) error {
		var err error
		n, err = e.store.DeleteExpiredForSubject(ctx, subjectID, now)
		return err
	})
	if err == nil && n > 0 {
		warnsRemoved.WithLabelValues("expired").Add(float64(n))
	}
	return n, err
}

// purgeQuietly is the read-path purge; counting filters by now, so a failure here is only logged.
func (e *Engine) purgeQuietly(ctx context.Context, subjectID string, now time.Time) {
	if _, err := e.purgeSubject(ctx, subjectID, now); err != nil {
		logger.Warn(fmt.Sprintf("Purga previa a la lectura fallida para %s: %v", subjectID, err), "WarnEngine")
	}
}

// call runs fn under the store timeout and records its duration.
func (e *Engine) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	storeOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return err
}

func validateSubject(subjectID string) error {
	if strings.TrimSpace(subjectID) == "" {
		return invalidInput("subject id is empty")
	}
	return nil
}

func validateWarn(subjectID, reason string) error {
	if err := validateSubject(subjectID); err != nil {
		return err
	}
	if reason == "" {
		return invalidInput("reason is empty")
	}
	if !utf8.ValidString(reason) {
		return invalidInput("reason is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(reason); n > MaxReasonLength {
		return invalidInput("reason is %d characters, limit is %d", n, MaxReasonLength)
	}
	return nil
}

// IsInvalidInput reports whether err was caused by a malformed request.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
