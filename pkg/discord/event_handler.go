// Package discord provides the event handler for managing Discord events.
package discord

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyWarnGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler tracks the gateway handlers PancyWarn installs on the session.
type EventHandler struct {
	client *ExtendedClient
	names  []string
	mu     sync.RWMutex
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{client: client}
}

// LoadEvents reports what was registered before Start. Handlers are added
// programmatically by internal/events, so there is nothing to read from disk.
func (eh *EventHandler) LoadEvents() error {
	eh.mu.RLock()
	n := len(eh.names)
	eh.mu.RUnlock()

	if n == 0 {
		logger.Warn("No hay eventos registrados: el filtro de advertencias no escuchará mensajes", "EventHandler")
		return nil
	}
	logger.System(fmt.Sprintf("%d eventos de PancyWarn registrados", n), "EventHandler")
	return nil
}

// Registered returns the names of the registered events in order.
func (eh *EventHandler) Registered() []string {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return append([]string(nil), eh.names...)
}

// RegisterEvent adds handler to the session under name.
func (eh *EventHandler) RegisterEvent(name string, handler interface{}) {
	eh.client.Session.AddHandler(handler)
	eh.mu.Lock()
	eh.names = append(eh.names, name)
	eh.mu.Unlock()
	logger.Debug(fmt.Sprintf("Evento '%s' registrado", name), "EventHandler")
}

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(handler func(*discordgo.Session, *discordgo.Ready)) {
	eh.RegisterEvent("Ready", handler)
}

// OnGuildCreate registers a guild create event handler
func (eh *EventHandler) OnGuildCreate(handler func(*discordgo.Session, *discordgo.GuildCreate)) {
	eh.RegisterEvent("GuildCreate", handler)
}

// OnGuildDelete registers a guild delete event handler
func (eh *EventHandler) OnGuildDelete(handler func(*discordgo.Session, *discordgo.GuildDelete)) {
	eh.RegisterEvent("GuildDelete", handler)
}

// OnMessageCreate registers a message create event handler
func (eh *EventHandler) OnMessageCreate(handler func(*discordgo.Session, *discordgo.MessageCreate)) {
	eh.RegisterEvent("MessageCreate", handler)
}

// OnGuildMemberAdd registers a guild member add event handler
func (eh *EventHandler) OnGuildMemberAdd(handler func(*discordgo.Session, *discordgo.GuildMemberAdd)) {
	eh.RegisterEvent("GuildMemberAdd", handler)
}

// OnGuildMemberRemove registers a guild member remove event handler
func (eh *EventHandler) OnGuildMemberRemove(handler func(*discordgo.Session, *discordgo.GuildMemberRemove)) {
	eh.RegisterEvent("GuildMemberRemove", handler)
}

// OnDisconnect registers a gateway disconnect handler
func (eh *EventHandler) OnDisconnect(handler func(*discordgo.Session, *discordgo.Disconnect)) {
	eh.RegisterEvent("Disconnect", handler)
}

// OnResumed registers a gateway resume handler
func (eh *EventHandler) OnResumed(handler func(*discordgo.Session, *discordgo.Resumed)) {
	eh.RegisterEvent("Resumed", handler)
}
