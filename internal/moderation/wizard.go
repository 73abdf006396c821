package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Responder answers interactions. The production implementation wraps the
// session's interaction endpoints.
type Responder interface {
	Respond(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	// Edit replaces the embeds and components of the interaction's message.
	Edit(ctx context.Context, i *discordgo.Interaction, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error
	Followup(ctx context.Context, i *discordgo.Interaction, content string) error
}

// Wizard drives the mod menu from component and modal interactions
type Wizard struct {
	Service   *Service
	Responder Responder
}

// NewWizard creates a Wizard
func NewWizard(svc *Service, r Responder) *Wizard {
	return &Wizard{Service: svc, Responder: r}
}

// Open sends a fresh ephemeral menu for targetID with the default state
func (w *Wizard) Open(ctx context.Context, i *discordgo.Interaction, targetID string) error {
	if i.Member == nil {
		return w.ephemeral(ctx, i, "❌ Este comando solo funciona dentro de un servidor.")
	}

	guild, err := w.Service.Platform.Guild(ctx, i.GuildID)
	if err != nil {
		return fmt.Errorf("resolve guild %s: %w", i.GuildID, err)
	}
	target, err := ResolveTarget(ctx, w.Service.Platform, i.GuildID, targetID)
	if err != nil {
		return w.ephemeral(ctx, i, "❌ No se encontró al usuario.")
	}

	st := NewState(guild, target, i.Member)
	menu, err := RenderMenu(st, w.Service.Permissions(ctx, st))
	if err != nil {
		return err
	}

	return w.Responder.Respond(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     menu.Embeds,
			Components: menu.Components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
}

// HandleComponent applies one control change, or confirms
func (w *Wizard) HandleComponent(ctx context.Context, i *discordgo.Interaction) error {
	data := i.MessageComponentData()

	if data.CustomID == IDCancel {
		return w.Responder.Respond(ctx, i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseUpdateMessage,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{{
					Description: "Moderación cancelada.",
					Color:       0x95A5A6,
				}},
				Components: []discordgo.MessageComponent{},
			},
		})
	}

	st, err := ModMenuState(ctx, w.Service.Platform, i)
	if err != nil {
		return w.invalid(ctx, i, err)
	}

	switch data.CustomID {
	case IDAction:
		if len(data.Values) == 0 {
			break
		}
		action, err := ParseAction(data.Values[0])
		if err != nil {
			return w.invalid(ctx, i, err)
		}
		st.Action = action

	case IDTimeout:
		if v, ok := firstInt(data.Values); ok {
			st.Timeout = v
		}

	case IDPurge:
		if v, ok := firstInt(data.Values); ok {
			st.DeleteMessageSeconds = int(v)
		}

	case IDDM:
		st.DM = !st.DM

	case IDBody:
		return w.Responder.Respond(ctx, i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: BodyModal(st.Body),
		})

	case IDConfirm:
		return w.confirm(ctx, i, st)

	default:
		return w.invalid(ctx, i, fmt.Errorf("%w: component %q", ErrInvalidMenu, data.CustomID))
	}

	return w.update(ctx, i, st)
}

// HandleModal stores the submitted body and re-renders
func (w *Wizard) HandleModal(ctx context.Context, i *discordgo.Interaction) error {
	st, err := ModMenuState(ctx, w.Service.Platform, i)
	if err != nil {
		return w.invalid(ctx, i, err)
	}

	body := modalValue(i.ModalSubmitData().Components, BodyInputID)
	st.Body = strings.TrimSpace(body)

	return w.update(ctx, i, st)
}

func (w *Wizard) update(ctx context.Context, i *discordgo.Interaction, st *State) error {
	menu, err := RenderMenu(st, w.Service.Permissions(ctx, st))
	if err != nil {
		return err
	}
	return w.Responder.Respond(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     menu.Embeds,
			Components: menu.Components,
		},
	})
}

func (w *Wizard) confirm(ctx context.Context, i *discordgo.Interaction, st *State) error {
	perms := w.Service.Permissions(ctx, st)
	menu, err := RenderMenu(st, perms)
	if err != nil {
		return err
	}

	// Lock the controls before any side effect so a second click cannot fire.
	if err := w.Responder.Respond(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     menu.Embeds,
			Components: DisableComponents(menu.Components),
		},
	}); err != nil {
		return err
	}

	out, err := w.Service.Confirm(ctx, st)
	if err != nil {
		logger.Debug(fmt.Sprintf("Confirmación rechazada para %s: %v", st.Target.ID(), err), "ModMenu")
		if editErr := w.Responder.Edit(ctx, i, menu.Embeds, menu.Components); editErr != nil {
			return editErr
		}
		return w.Responder.Followup(ctx, i, ConfirmErrorMessage(err))
	}

	return w.Responder.Edit(ctx, i, []*discordgo.MessageEmbed{RenderSummary(st, out)}, []discordgo.MessageComponent{})
}

// ConfirmErrorMessage is the user-facing text of a Confirm error
func ConfirmErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotPermitted):
		return "❌ Ya no tienes permiso para aplicar esta acción."
	case errors.Is(err, ErrBodyRequired):
		return "❌ Falta la razón."
	case errors.Is(err, ErrTimeoutRequired):
		return "❌ Elige la duración del aislamiento."
	default:
		return "❌ No se pudo confirmar la acción."
	}
}

func (w *Wizard) invalid(ctx context.Context, i *discordgo.Interaction, err error) error {
	logger.Warn(fmt.Sprintf("Menú inválido: %v", err), "ModMenu")
	return w.ephemeral(ctx, i, "❌ Este menú ya no es válido.")
}

func (w *Wizard) ephemeral(ctx context.Context, i *discordgo.Interaction, content string) error {
	return w.Responder.Respond(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func firstInt(values []string) (int64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	v, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// modalValue finds a text input by id in submitted modal rows
func modalValue(rows []discordgo.MessageComponent, id string) string {
	for _, row := range rows {
		var comps []discordgo.MessageComponent
		switch r := row.(type) {
		case *discordgo.ActionsRow:
			comps = r.Components
		case discordgo.ActionsRow:
			comps = r.Components
		}
		for _, c := range comps {
			switch in := c.(type) {
			case *discordgo.TextInput:
				if in.CustomID == id {
					return in.Value
				}
			case discordgo.TextInput:
				if in.CustomID == id {
					return in.Value
				}
			}
		}
	}
	return ""
}
