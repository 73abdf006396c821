package mod

import (
	"strings"
	"testing"

	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func TestHistoryEmbed(t *testing.T) {
	user := &discordgo.User{ID: "u", Username: "pancy"}
	records := []models.ActionRecord{
		{ID: 3, Action: "warn", Body: "spam", Timestamp: 1700000000000},
		{ID: 2, Action: "ban", Body: "raid", Hidden: true, Timestamp: 1700000000000},
		{ID: 1, Action: "kick", Revoked: true, Timestamp: 1700000000000},
	}

	tests := []struct {
		name       string
		showHidden bool
		lines      int
		hiddenCase bool
	}{
		{"staff", true, 3, true},
		{"member", false, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := HistoryEmbed(user, records, tt.showHidden)
			lines := strings.Split(e.Description, "\n")
			if len(lines) != tt.lines {
				t.Fatalf("lines = %d, want %d", len(lines), tt.lines)
			}
			if got := strings.Contains(e.Description, "`#2`"); got != tt.hiddenCase {
				t.Errorf("hidden case shown = %v, want %v", got, tt.hiddenCase)
			}
			last := lines[len(lines)-1]
			if !strings.HasPrefix(last, "~~") || !strings.Contains(last, "Sin razón") {
				t.Errorf("revoked line = %q, want struck through with placeholder", last)
			}
		})
	}
}

func TestHistoryEmbedEmptyAndTruncated(t *testing.T) {
	user := &discordgo.User{ID: "u", Username: "pancy"}

	if e := HistoryEmbed(user, nil, true); e.Description != "Sin registros." {
		t.Errorf("Description = %q, want empty notice", e.Description)
	}

	var records []models.ActionRecord
	for i := 0; i < historyLimit+5; i++ {
		records = append(records, models.ActionRecord{ID: int64(i + 1), Action: "note"})
	}
	e := HistoryEmbed(user, records, true)
	if n := len(strings.Split(e.Description, "\n")); n != historyLimit {
		t.Errorf("lines = %d, want %d", n, historyLimit)
	}
	if e.Footer == nil || !strings.Contains(e.Footer.Text, "20") {
		t.Errorf("Footer = %v, want total count", e.Footer)
	}
}
