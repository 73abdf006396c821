// Package main is the entry point for the PancyMod Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/internal/commands"
	"github.com/PancyStudios/PancyModGo/internal/commands/level"
	"github.com/PancyStudios/PancyModGo/internal/commands/mod"
	"github.com/PancyStudios/PancyModGo/internal/events"
	"github.com/PancyStudios/PancyModGo/internal/leveling"
	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/internal/modlog"
	"github.com/PancyStudios/PancyModGo/pkg/actionlog"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/mqtt"
	"github.com/PancyStudios/PancyModGo/pkg/storage"
	"github.com/PancyStudios/PancyModGo/pkg/web"
)

const cooldownPruneInterval = 10 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	logger.System("Iniciando PancyMod Go...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})

	// Per-guild settings
	guilds, err := config.LoadGuilds(cfg.GuildsConfig)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error leyendo configuración de servidores: %v", err), "Main")
		os.Exit(1)
	}
	logger.Info(fmt.Sprintf("Configuración cargada para %d servidores", len(guilds.Guilds)), "Main")

	// Action log (sqlite)
	actions, err := actionlog.Open(cfg.ActionsDBPath)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error abriendo el registro de acciones: %v", err), "Main")
		os.Exit(1)
	}
	defer actions.Close()

	// Initialize database (levels); the bot runs without it
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
		// Continue without database- it will attempt to reconnect
	}
	defer func() {
		if db != nil {
			_ = db.Disconnect()
		}
	}()

	var levels *leveling.Service
	if db != nil {
		database.InitGlobalDataManagers(db)
		levels = leveling.NewService(database.GlobalLevelsDM)
	}

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Log fan-out: through the broker when one is configured, in-process otherwise
	consumer := modlog.NewConsumer(actions, discordClient.Platform, guilds)
	var publisher modlog.Publisher = modlog.NewLocalPublisher(consumer)

	var mqttClient *mqtt.MqttCommunicator
	if cfg.BrokerEnabled() {
		mqttClientID := "pancymod"
		if !cfg.IsProd() {
			mqttClientID = "pancymod_canary"
		}

		mqttClient = mqtt.Init(mqtt.Options{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			Username: cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: mqttClientID,
			Prefix:   cfg.MQTTTopicPrefix,
		})
		defer mqttClient.Destroy()

		if err := modlog.Subscribe(mqttClient, consumer); err != nil {
			logger.Error(fmt.Sprintf("Error suscribiendo al registro de acciones: %v", err), "Main")
		}
		publisher = modlog.NewBrokerPublisher(mqttClient)
	} else {
		logger.Warn("MQTT no configurado, los registros se publican en proceso", "Main")
	}
	notifier := &modlog.Notifier{Publisher: publisher}

	// Object store for evidence images
	uploader, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
		Secure:    cfg.S3Secure,
	})
	switch {
	case stderrors.Is(err, storage.ErrDisabled):
		logger.Warn("Almacenamiento de objetos no configurado, se usarán las URLs de Discord", "Main")
	case err != nil:
		logger.Error(fmt.Sprintf("Error iniciando almacenamiento de objetos: %v", err), "Main")
		uploader = nil
	default:
		checkCtx, checkCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := uploader.Check(checkCtx); err != nil {
			logger.Warn(fmt.Sprintf("El bucket de evidencias no está disponible: %v", err), "Main")
		}
		checkCancel()
	}

	// Moderation core
	service := moderation.NewService(discordClient.Platform, actions, notifier)
	wizard := moderation.NewWizard(service, discordClient.Platform)
	watcher := audit.NewWatcher(discordClient.Platform, actions, notifier)

	// Initialize web server
	webServer := web.Init(cfg.LogsWebServerHook, cfg.WebAllowedHosts)
	web.SetupAPIRoutes(webServer, actions)
	webServer.StartAsync(cfg.Port)

	// Register commands using the new commands package
	deps := commands.Deps{
		Mod: &mod.Module{
			Service:  service,
			Wizard:   wizard,
			Store:    actions,
			Notifier: notifier,
			Uploader: uploader,
		},
		Health: actions,
	}
	if levels != nil {
		deps.Level = &level.Module{Service: levels}
	}
	commands.RegisterAll(discordClient, deps)

	// Register events using the new events package
	events.RegisterAll(discordClient, events.Deps{
		Watcher: watcher,
		Levels:  levels,
		Guilds:  guilds,
	})

	if mqttClient != nil {
		registerBrokerRequests(mqttClient, discordClient, watcher)
	}

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if levels != nil {
		go pruneCooldowns(ctx, levels.Cooldowns())
	}

	logger.Success("PancyMod Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyMod Go...", "Main")
	cancel()

	// Stop taking new events first, then drain what is in flight
	_ = discordClient.Stop()
	watcher.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando el servidor web: %v", err), "Main")
	}
}

// registerBrokerRequests answers health probes from other services on the broker
func registerBrokerRequests(mc *mqtt.MqttCommunicator, client *discord.ExtendedClient, watcher *audit.Watcher) {
	mc.On("status", func(payload map[string]interface{}) (interface{}, error) {
		return map[string]interface{}{
			"ready":         client.IsReady(),
			"guilds":        client.GuildCount(),
			"pendingAudits": watcher.Pending(),
			"uptime":        time.Since(client.StartTime).Milliseconds(),
			"version":       config.Version,
		}, nil
	})
}

// pruneCooldowns drops expired XP cooldowns until ctx is done
func pruneCooldowns(ctx context.Context, c *leveling.Cooldowns) {
	ticker := time.NewTicker(cooldownPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
