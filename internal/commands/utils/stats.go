package utils

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Muestra estadísticas del bot",
		"utils",
		statsHandler,
	)
}

// hostStats is the machine usage shown by /utils stats
type hostStats struct {
	CPUPercent  float64
	MemUsed     uint64
	MemTotal    uint64
	ProcessRSS  uint64
	Platform    string
	HostUptime  time.Duration
	CollectedOK bool
}

// collectHostStats samples CPU over a short window; failures leave zero values
func collectHostStats() hostStats {
	var s hostStats

	if pct, err := cpu.Percent(500*time.Millisecond, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
		s.CollectedOK = true
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemUsed, s.MemTotal = vm.Used, vm.Total
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			s.ProcessRSS = info.RSS
		}
	}
	if info, err := host.Info(); err == nil {
		s.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		s.HostUptime = time.Duration(info.Uptime) * time.Second
	}
	return s
}

func megabytes(b uint64) float64 {
	return float64(b) / 1024 / 1024
}

// statsHandler handles the /utils stats command
func statsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		if err := ctx.Defer(); err != nil {
			return
		}

		hs := collectHostStats()

		memberCount := 0
		ctx.Session.State.RLock()
		for _, guild := range ctx.Session.State.Guilds {
			memberCount += guild.MemberCount
		}
		ctx.Session.State.RUnlock()

		cpuValue := "No disponible"
		if hs.CollectedOK {
			cpuValue = fmt.Sprintf("%.1f%% / %d CPUs", hs.CPUPercent, runtime.NumCPU())
		}
		platform := hs.Platform
		if platform == "" {
			platform = runtime.GOOS
		}

		embed := &discordgo.MessageEmbed{
			Title: "📊 Estadísticas del Bot",
			Color: 0x5865F2,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🤖 Versión del Bot", Value: config.Version, Inline: true},
				{Name: "🐹 Versión de Go", Value: strings.TrimPrefix(runtime.Version(), "go"), Inline: true},
				{Name: "📚 Versión de DiscordGo", Value: discordgo.VERSION, Inline: true},
				{Name: "🖥 RAM del proceso", Value: fmt.Sprintf("%.2f MB", megabytes(hs.ProcessRSS)), Inline: true},
				{Name: "💾 RAM del host", Value: fmt.Sprintf("%.0f / %.0f MB", megabytes(hs.MemUsed), megabytes(hs.MemTotal)), Inline: true},
				{Name: "⚙️ CPU", Value: cpuValue, Inline: true},
				{Name: "🧵 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
				{Name: "⏱ Uptime", Value: moderation.FormatDuration(time.Since(ctx.Client.StartTime)), Inline: true},
				{Name: "🐧 Sistema", Value: platform, Inline: true},
				{Name: "🏠 Guilds", Value: fmt.Sprintf("%d", ctx.Client.GuildCount()), Inline: true},
				{Name: "👥 Miembros", Value: fmt.Sprintf("%d", memberCount), Inline: true},
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text:    "💫 - Developed by PancyStudios",
				IconURL: ctx.Client.Session.State.User.AvatarURL(""),
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		_ = ctx.EditReplyEmbed(embed)
	}()
	return nil
}
