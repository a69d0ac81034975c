// Package sanctions ties the warn engine to a guild: it registers warns,
// runs the punishment the ladder prescribes and announces both.
package sanctions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/mqtt"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
)

// ModeratorFactory returns the moderator that acts inside guildID.
type ModeratorFactory func(guildID string) warn.Moderator

// Options configures a Service.
type Options struct {
	Moderators ModeratorFactory
	Events     *mqtt.Events
	// Notify, when set, receives every punishment outcome with its guild.
	Notify            func(guildID string, o warn.Outcome)
	PunishmentTimeout time.Duration
	Now               func() time.Time
}

// Service is the single path through which warns enter the bot.
type Service struct {
	engine     *warn.Engine
	moderators ModeratorFactory
	events     *mqtt.Events
	notify     func(string, warn.Outcome)
	timeout    time.Duration
	now        func() time.Time

	mu        sync.Mutex
	executors map[string]*warn.Executor
}

func New(engine *warn.Engine, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		engine:     engine,
		moderators: opts.Moderators,
		events:     opts.Events,
		notify:     opts.Notify,
		timeout:    opts.PunishmentTimeout,
		now:        opts.Now,
		executors:  make(map[string]*warn.Executor),
	}
}

// Engine exposes the underlying engine for read paths.
func (s *Service) Engine() *warn.Engine {
	return s.engine
}

// Now is the clock every warn registered through the service uses.
func (s *Service) Now() time.Time {
	return s.now()
}

// Warn registers a warn and schedules its punishment in guildID. The returned
// result never depends on the punishment succeeding.
func (s *Service) Warn(ctx context.Context, guildID, subjectID string, issuerID *string, reason string) (warn.Result, error) {
	res, err := s.engine.RegisterWarn(ctx, subjectID, issuerID, reason, s.now())
	if err != nil {
		return res, err
	}
	s.WarnRegistered(guildID, res)
	return res, nil
}

// WarnRegistered publishes a stored warn and punishes its subject when the
// guild is known. Warns registered through the HTTP API arrive here too.
func (s *Service) WarnRegistered(guildID string, res warn.Result) {
	s.events.WarnRegistered(guildID, res)
	if guildID != "" {
		s.Punish(guildID, res.Warn.SubjectID, res.ActiveCount, res.Action)
	}
}

// Punish runs action against subjectID in the background.
func (s *Service) Punish(guildID, subjectID string, count int, action warn.PunishmentAction) {
	if action.Kind == warn.PunishmentNone {
		return
	}
	x := s.executor(guildID)
	if x == nil {
		logger.Warn(fmt.Sprintf("Sin moderador para el servidor %s, se omite %s", guildID, action), "Punishment")
		return
	}
	x.Execute(subjectID, count, action)
}

func (s *Service) executor(guildID string) *warn.Executor {
	s.mu.Lock()
	defer s.mu.Unlock()

	if x, ok := s.executors[guildID]; ok {
		return x
	}
	if s.moderators == nil {
		return nil
	}
	m := s.moderators(guildID)
	if m == nil {
		return nil
	}

	x := warn.NewExecutor(m, warn.ExecutorOptions{
		Timeout: s.timeout,
		OnOutcome: func(o warn.Outcome) {
			s.events.PunishmentApplied(o)
			if s.notify != nil {
				s.notify(guildID, o)
			}
		},
	})
	s.executors[guildID] = x
	return x
}

// Remove deletes one warn by id.
func (s *Service) Remove(ctx context.Context, id int64) (bool, error) {
	removed, err := s.engine.RemoveWarn(ctx, id)
	if err == nil && removed {
		s.WarnRemoved(id)
	}
	return removed, err
}

// Clear deletes every warn of the subject.
func (s *Service) Clear(ctx context.Context, subjectID string) (int, error) {
	n, err := s.engine.ClearSubject(ctx, subjectID)
	if err == nil {
		s.SubjectCleared(subjectID, n)
	}
	return n, err
}

func (s *Service) WarnRemoved(id int64) {
	s.events.WarnRemoved(id)
}

func (s *Service) SubjectCleared(subjectID string, removed int) {
	s.events.SubjectCleared(subjectID, removed)
}

// Wait blocks until every scheduled punishment has finished.
func (s *Service) Wait() {
	s.mu.Lock()
	executors := make([]*warn.Executor, 0, len(s.executors))
	for _, x := range s.executors {
		executors = append(executors, x)
	}
	s.mu.Unlock()

	for _, x := range executors {
		x.Wait()
	}
}
