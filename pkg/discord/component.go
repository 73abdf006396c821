package discord

import (
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ComponentContext provides context for component and modal handlers
type ComponentContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Client      *ExtendedClient
}

// ComponentHandlerFunc handles a message component or modal submit interaction
type ComponentHandlerFunc func(ctx *ComponentContext) error

// ComponentRouter dispatches component interactions by custom id prefix.
// "modmenu:confirm" is routed to the handler registered for "modmenu".
type ComponentRouter struct {
	components map[string]ComponentHandlerFunc
	modals     map[string]ComponentHandlerFunc
	mu         sync.RWMutex
}

// NewComponentRouter creates an empty router
func NewComponentRouter() *ComponentRouter {
	return &ComponentRouter{
		components: make(map[string]ComponentHandlerFunc),
		modals:     make(map[string]ComponentHandlerFunc),
	}
}

// CustomIDPrefix returns the part of a custom id before the first colon
func CustomIDPrefix(customID string) string {
	prefix, _, _ := strings.Cut(customID, ":")
	return prefix
}

// HandleComponent registers fn for message components with the given prefix
func (r *ComponentRouter) HandleComponent(prefix string, fn ComponentHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[prefix] = fn
}

// HandleModal registers fn for modal submits with the given prefix
func (r *ComponentRouter) HandleModal(prefix string, fn ComponentHandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals[prefix] = fn
}

// Lookup finds the handler for an interaction type and custom id
func (r *ComponentRouter) Lookup(t discordgo.InteractionType, customID string) (ComponentHandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefix := CustomIDPrefix(customID)
	switch t {
	case discordgo.InteractionMessageComponent:
		fn, ok := r.components[prefix]
		return fn, ok
	case discordgo.InteractionModalSubmit:
		fn, ok := r.modals[prefix]
		return fn, ok
	}
	return nil, false
}

// CustomID returns the custom id of the component or modal interaction
func (ctx *ComponentContext) CustomID() string {
	switch ctx.Interaction.Type {
	case discordgo.InteractionMessageComponent:
		return ctx.Interaction.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return ctx.Interaction.ModalSubmitData().CustomID
	}
	return ""
}

// ReplyEphemeral sends an ephemeral reply visible only to the user
func (ctx *ComponentContext) ReplyEphemeral(content string) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
