package moderation

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
)

const (
	menuURL      = "https://pancymod.invalid/menu"
	menuStateKey = "s"
	menuVersion  = 1
)

// menuBlob is the machine-readable part of the wizard state. The body travels
// in the embed description, which has a larger limit than the URL.
type menuBlob struct {
	Version              int    `json:"v"`
	TargetID             string `json:"t"`
	Action               string `json:"a"`
	DM                   bool   `json:"d,omitempty"`
	Timeout              int64  `json:"to,omitempty"`
	DeleteMessageSeconds int    `json:"ds,omitempty"`
	Timestamp            int64  `json:"ts"`
}

// MenuData is the state recovered from a rendered menu before the target is
// resolved against the platform.
type MenuData struct {
	TargetID             string
	Action               Action
	Body                 string
	DM                   bool
	Timeout              int64
	DeleteMessageSeconds int
	Timestamp            time.Time
}

// encodeMenuURL packs the wizard fields into the embed URL
func encodeMenuURL(st *State) (string, error) {
	raw, err := json.Marshal(menuBlob{
		Version:              menuVersion,
		TargetID:             st.Target.ID(),
		Action:               string(st.Action),
		DM:                   st.DM,
		Timeout:              st.Timeout,
		DeleteMessageSeconds: st.DeleteMessageSeconds,
		Timestamp:            st.Timestamp.UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set(menuStateKey, base64.RawURLEncoding.EncodeToString(raw))
	return menuURL + "?" + q.Encode(), nil
}

// DecodeMenu reads the wizard fields back from a message rendered by RenderMenu
func DecodeMenu(msg *discordgo.Message) (*MenuData, error) {
	if msg == nil || len(msg.Embeds) == 0 {
		return nil, fmt.Errorf("%w: no embed", ErrInvalidMenu)
	}
	embed := msg.Embeds[0]
	if embed.Footer == nil || embed.Footer.Text == "" {
		return nil, fmt.Errorf("%w: no target", ErrInvalidMenu)
	}
	targetID := embed.Footer.Text

	u, err := url.Parse(embed.URL)
	if err != nil || embed.URL == "" {
		return nil, fmt.Errorf("%w: no state", ErrInvalidMenu)
	}
	raw, err := base64.RawURLEncoding.DecodeString(u.Query().Get(menuStateKey))
	if err != nil {
		return nil, fmt.Errorf("%w: bad state encoding", ErrInvalidMenu)
	}

	var blob menuBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("%w: bad state: %v", ErrInvalidMenu, err)
	}
	if blob.Version != menuVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidMenu, blob.Version)
	}
	if blob.TargetID != targetID {
		return nil, fmt.Errorf("%w: target mismatch", ErrInvalidMenu)
	}

	action, err := ParseAction(blob.Action)
	if err != nil {
		return nil, err
	}

	return &MenuData{
		TargetID:             targetID,
		Action:               action,
		Body:                 embed.Description,
		DM:                   blob.DM,
		Timeout:              blob.Timeout,
		DeleteMessageSeconds: blob.DeleteMessageSeconds,
		Timestamp:            time.UnixMilli(blob.Timestamp),
	}, nil
}

// ModMenuState rebuilds the full wizard state from the message a component or
// modal interaction was triggered on. The staff member is the interaction's
// member; a target who left the server resolves to a bare user.
func ModMenuState(ctx context.Context, p Platform, i *discordgo.Interaction) (*State, error) {
	if i.Member == nil {
		return nil, ErrStaffRequired
	}

	data, err := DecodeMenu(i.Message)
	if err != nil {
		return nil, err
	}

	guild, err := p.Guild(ctx, i.GuildID)
	if err != nil {
		return nil, fmt.Errorf("resolve guild %s: %w", i.GuildID, err)
	}

	target, err := ResolveTarget(ctx, p, i.GuildID, data.TargetID)
	if err != nil {
		return nil, err
	}

	st := NewState(guild, target, i.Member)
	st.Action = data.Action
	st.Body = data.Body
	st.DM = data.DM
	st.Timeout = data.Timeout
	st.DeleteMessageSeconds = data.DeleteMessageSeconds
	st.Timestamp = data.Timestamp
	return st, nil
}

// ResolveTarget fetches the user and, when they are in the guild, the member
func ResolveTarget(ctx context.Context, p Platform, guildID, userID string) (Target, error) {
	user, err := p.User(ctx, userID)
	if err != nil {
		return Target{}, fmt.Errorf("resolve user %s: %w", userID, err)
	}

	member, err := p.Member(ctx, guildID, userID)
	if err != nil {
		if !IsUnknownMember(err) {
			return Target{}, fmt.Errorf("resolve member %s: %w", userID, err)
		}
		member = nil
	}
	if member != nil && member.User == nil {
		member.User = user
	}

	return Target{User: user, Member: member}, nil
}
