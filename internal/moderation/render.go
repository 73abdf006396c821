package moderation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Component ids. The router dispatches on the part before the colon.
const (
	ComponentPrefix = "modmenu"

	IDAction  = "modmenu:action"
	IDTimeout = "modmenu:timeout"
	IDPurge   = "modmenu:purge"
	IDBody    = "modmenu:body"
	IDDM      = "modmenu:dm"
	IDConfirm = "modmenu:confirm"
	IDCancel  = "modmenu:cancel"

	// BodyInputID is the text input inside the body modal.
	BodyInputID = "body"
)

// Choice is one preset of a wizard select
type Choice struct {
	Label string
	Value int64
}

// TimeoutChoices are the selectable timeout durations in milliseconds
var TimeoutChoices = []Choice{
	{"60 segundos", 60_000},
	{"5 minutos", 300_000},
	{"10 minutos", 600_000},
	{"1 hora", 3_600_000},
	{"6 horas", 21_600_000},
	{"1 día", 86_400_000},
	{"7 días", 604_800_000},
}

// PurgeChoices are the selectable delete-message windows in seconds
var PurgeChoices = []Choice{
	{"No borrar mensajes", 0},
	{"Última hora", 3_600},
	{"Últimas 6 horas", 21_600},
	{"Últimas 12 horas", 43_200},
	{"Últimas 24 horas", 86_400},
	{"Últimos 3 días", 259_200},
	{"Últimos 7 días", 604_800},
}

// Menu is a rendered wizard message
type Menu struct {
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// RenderMenu draws the wizard for st. Only permitted actions are offered,
// plus the current one so the selection never disappears.
func RenderMenu(st *State, perms PermissionSet) (*Menu, error) {
	stateURL, err := encodeMenuURL(st)
	if err != nil {
		return nil, err
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Moderar a %s", targetName(st.Target)),
		URL:         stateURL,
		Description: st.Body,
		Color:       st.Action.Color(),
		Footer: &discordgo.MessageEmbedFooter{
			Text: st.Target.ID(),
		},
		Fields: menuFields(st, perms),
	}
	if st.Target.User != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: st.Target.User.AvatarURL("128")}
	}

	rows := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{actionSelect(st, perms)}},
	}
	switch st.Action {
	case ActionTimeout:
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			choiceSelect(IDTimeout, "Duración del aislamiento", TimeoutChoices, st.Timeout, func(v int64) string {
				return FormatDuration(time.Duration(v) * time.Millisecond)
			}),
		}})
	case ActionBan:
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			choiceSelect(IDPurge, "Borrar mensajes recientes", PurgeChoices, int64(st.DeleteMessageSeconds), func(v int64) string {
				return "Últimos " + FormatDuration(time.Duration(v)*time.Second)
			}),
		}})
	}
	rows = append(rows, discordgo.ActionsRow{Components: buttons(st, perms)})

	return &Menu{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: rows,
	}, nil
}

func targetName(t Target) string {
	if t.User == nil {
		return t.ID()
	}
	if t.User.GlobalName != "" {
		return t.User.GlobalName
	}
	return t.User.Username
}

func menuFields(st *State, perms PermissionSet) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Usuario", Value: fmt.Sprintf("<@%s>", st.Target.ID()), Inline: true},
		{Name: "Acción", Value: st.Action.Emoji() + " " + st.Action.Label(), Inline: true},
		{Name: "Mensaje directo", Value: yesNo(st.DM), Inline: true},
	}

	if !st.Target.InServer() {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Estado", Value: "No está en el servidor"})
	}
	if st.TimedOutUntil != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Aislado hasta",
			Value: fmt.Sprintf("<t:%d:f>", st.TimedOutUntil.Unix()),
		})
	}
	if d := st.TimeoutDuration(); d > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Duración", Value: FormatDuration(d), Inline: true})
	}
	if st.Action == ActionBan && st.DeleteMessageSeconds > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Borrar mensajes",
			Value:  FormatDuration(time.Duration(st.DeleteMessageSeconds) * time.Second),
			Inline: true,
		})
	}

	var problems []string
	if !perms.Allows(st.Action) {
		problems = append(problems, "No tienes permiso para aplicar esta acción a este usuario")
	}
	switch st.Validate() {
	case ErrBodyRequired:
		problems = append(problems, "Falta la razón")
	case ErrTimeoutRequired:
		problems = append(problems, "Elige la duración del aislamiento")
	}
	if len(problems) > 0 {
		value := ""
		for _, p := range problems {
			value += "• " + p + "\n"
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Pendiente", Value: value})
	}

	return fields
}

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func actionSelect(st *State, perms PermissionSet) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, len(Actions))
	for _, a := range Actions {
		if !perms.Allows(a) && a != st.Action {
			continue
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:   a.Emoji() + " " + a.Label(),
			Value:   string(a),
			Default: a == st.Action,
		})
	}

	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    IDAction,
		Placeholder: "Acción",
		Options:     options,
	}
}

func choiceSelect(id, placeholder string, choices []Choice, current int64, label func(int64) string) discordgo.SelectMenu {
	options := make([]discordgo.SelectMenuOption, 0, len(choices)+1)
	found := false
	for _, c := range choices {
		selected := c.Value == current
		found = found || selected
		options = append(options, discordgo.SelectMenuOption{
			Label:   c.Label,
			Value:   strconv.FormatInt(c.Value, 10),
			Default: selected,
		})
	}
	// Values set outside the menu (quick commands) still show as selected.
	if !found && current > 0 {
		options = append(options, discordgo.SelectMenuOption{
			Label:   label(current),
			Value:   strconv.FormatInt(current, 10),
			Default: true,
		})
	}

	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    id,
		Placeholder: placeholder,
		Options:     options,
	}
}

func buttons(st *State, perms PermissionSet) []discordgo.MessageComponent {
	dmStyle := discordgo.SecondaryButton
	if st.DM {
		dmStyle = discordgo.SuccessButton
	}

	bodyLabel := "Añadir razón"
	if st.Body != "" {
		bodyLabel = "Editar razón"
	}

	return []discordgo.MessageComponent{
		discordgo.Button{Label: bodyLabel, Style: discordgo.PrimaryButton, CustomID: IDBody},
		discordgo.Button{Label: "Mensaje directo: " + yesNo(st.DM), Style: dmStyle, CustomID: IDDM},
		discordgo.Button{
			Label:    "Confirmar",
			Style:    discordgo.DangerButton,
			CustomID: IDConfirm,
			Disabled: !CanConfirm(st, perms),
		},
		discordgo.Button{Label: "Cancelar", Style: discordgo.SecondaryButton, CustomID: IDCancel},
	}
}

// CanConfirm reports whether the confirm control is enabled for st
func CanConfirm(st *State, perms PermissionSet) bool {
	return st.Valid() && perms.Allows(st.Action)
}

// DisableComponents returns a copy of rows with every control disabled
func DisableComponents(rows []discordgo.MessageComponent) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		ar, ok := row.(discordgo.ActionsRow)
		if !ok {
			out = append(out, row)
			continue
		}
		comps := make([]discordgo.MessageComponent, 0, len(ar.Components))
		for _, c := range ar.Components {
			switch v := c.(type) {
			case discordgo.Button:
				v.Disabled = true
				comps = append(comps, v)
			case discordgo.SelectMenu:
				v.Disabled = true
				comps = append(comps, v)
			default:
				comps = append(comps, c)
			}
		}
		out = append(out, discordgo.ActionsRow{Components: comps})
	}
	return out
}

// BodyModal is the modal opened by the body button
func BodyModal(current string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: IDBody,
		Title:    "Razón",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    BodyInputID,
					Label:       "Razón o nota",
					Style:       discordgo.TextInputParagraph,
					Value:       current,
					Placeholder: "Describe el motivo",
					MaxLength:   MaxBodyLength,
				},
			}},
		},
	}
}
