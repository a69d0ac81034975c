package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/PancyStudios/PancyWarnGo/pkg/models"
	"github.com/PancyStudios/PancyWarnGo/pkg/warn"
	"github.com/goccy/go-json"
)

// Topics the bot publishes warn lifecycle events on.
const (
	TopicWarnRegistered = "pancy/warns/registered"
	TopicWarnRemoved    = "pancy/warns/removed"
	TopicSubjectCleared = "pancy/warns/cleared"
	TopicPunishment     = "pancy/warns/punishment"
)

// WarnEvent is the payload of TopicWarnRegistered.
type WarnEvent struct {
	GuildID     string      `json:"guildId,omitempty"`
	Warn        models.Warn `json:"warn"`
	ActiveCount int         `json:"activeCount"`
	Action      string      `json:"action"`
}

// RemovalEvent is the payload of TopicWarnRemoved and TopicSubjectCleared.
type RemovalEvent struct {
	ID        int64  `json:"id,omitempty"`
	SubjectID string `json:"subjectId,omitempty"`
	Removed   int    `json:"removed"`
}

// PunishmentEvent is the payload of TopicPunishment.
type PunishmentEvent struct {
	SubjectID string `json:"subjectId"`
	Count     int    `json:"count"`
	Action    string `json:"action"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Events publishes warn lifecycle events. A nil communicator drops them.
type Events struct {
	mc *MqttCommunicator
}

// NewEvents wraps mc.
func NewEvents(mc *MqttCommunicator) *Events {
	return &Events{mc: mc}
}

func (e *Events) publish(topic string, payload any) {
	if e == nil || e.mc == nil {
		return
	}
	if err := e.mc.Publish(topic, payload); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo publicar en %s: %v", topic, err), "MQTT")
	}
}

// WarnRegistered announces a stored warn.
func (e *Events) WarnRegistered(guildID string, res warn.Result) {
	e.publish(TopicWarnRegistered, WarnEvent{
		GuildID:     guildID,
		Warn:        res.Warn,
		ActiveCount: res.ActiveCount,
		Action:      res.Action.String(),
	})
}

// WarnRemoved announces the removal of one warn.
func (e *Events) WarnRemoved(id int64) {
	e.publish(TopicWarnRemoved, RemovalEvent{ID: id, Removed: 1})
}

// SubjectCleared announces that every warn of a subject was deleted.
func (e *Events) SubjectCleared(subjectID string, removed int) {
	e.publish(TopicSubjectCleared, RemovalEvent{SubjectID: subjectID, Removed: removed})
}

// PunishmentApplied announces the outcome of a punishment.
func (e *Events) PunishmentApplied(o warn.Outcome) {
	ev := PunishmentEvent{
		SubjectID: o.SubjectID,
		Count:     o.Count,
		Action:    o.Action.String(),
		Success:   o.Err == nil,
	}
	if o.Err != nil {
		ev.Error = o.Err.Error()
	}
	e.publish(TopicPunishment, ev)
}

// SubjectQuery is the payload of the warns/* requests.
type SubjectQuery struct {
	SubjectID string `json:"subjectId"`
}

// CountReply answers warns/count.
type CountReply struct {
	SubjectID   string `json:"subjectId"`
	ActiveCount int    `json:"activeCount"`
	NextAction  string `json:"nextAction"`
}

// WarnsReply answers warns/active and warns/history.
type WarnsReply struct {
	SubjectID string        `json:"subjectId"`
	Warns     []models.Warn `json:"warns"`
}

// ServeWarns answers warn queries from other services over the request topics
// warns/count, warns/active and warns/history.
func ServeWarns(mc *MqttCommunicator, engine *warn.Engine, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}

	handlers := map[string]func(ctx context.Context, subject string) (any, error){
		"warns/count": func(ctx context.Context, subject string) (any, error) {
			n, err := engine.CountActiveWarns(ctx, subject, now())
			if err != nil {
				return nil, err
			}
			return CountReply{SubjectID: subject, ActiveCount: n, NextAction: warn.PunishmentFor(n + 1).String()}, nil
		},
		"warns/active": func(ctx context.Context, subject string) (any, error) {
			warns, err := engine.GetActiveWarns(ctx, subject, now())
			if err != nil {
				return nil, err
			}
			return WarnsReply{SubjectID: subject, Warns: nonNil(warns)}, nil
		},
		"warns/history": func(ctx context.Context, subject string) (any, error) {
			warns, err := engine.GetWarnHistory(ctx, subject)
			if err != nil {
				return nil, err
			}
			return WarnsReply{SubjectID: subject, Warns: nonNil(warns)}, nil
		},
	}

	var errs []error
	for topic, fn := range handlers {
		errs = append(errs, mc.On(topic, func(_ string, payload json.RawMessage) (any, error) {
			var q SubjectQuery
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &q); err != nil {
					return nil, fmt.Errorf("payload inválido: %w", err)
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return fn(ctx, q.SubjectID)
		}))
	}
	return errors.Join(errs...)
}

func nonNil(warns []models.Warn) []models.Warn {
	if warns == nil {
		return []models.Warn{}
	}
	return warns
}
