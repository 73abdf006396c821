package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestLoad(t *testing.T) {
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("enviroment", "test")
	os.Setenv("actionsDbPath", "/tmp/actions.db")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("enviroment")
		os.Unsetenv("actionsDbPath")
	}()

	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}

	if config.ActionsDBPath != "/tmp/actions.db" {
		t.Errorf("ActionsDBPath = %v, want %v", config.ActionsDBPath, "/tmp/actions.db")
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetEnvBool(t *testing.T) {
	defer os.Unsetenv("TEST_BOOL")

	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"false", true, false},
		{"1", false, true},
		{"nope", true, true},
	}

	for _, tt := range tests {
		os.Setenv("TEST_BOOL", tt.value)
		if got := getEnvBool("TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestGet(t *testing.T) {
	resetForTesting()

	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	config2 := Get()
	if config != config2 {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	for _, key := range []string{"botToken", "mongodbUrl", "dbName", "MQTT_Host", "MQTT_Port", "PORT", "enviroment", "actionsDbPath", "S3_Endpoint"} {
		os.Unsetenv(key)
	}

	resetForTesting()
	config, _ := Load()

	if config.MongoDBURL != "mongodb://localhost:27017" {
		t.Errorf("MongoDBURL default = %v, want %v", config.MongoDBURL, "mongodb://localhost:27017")
	}

	if config.DBName != "PancyMod" {
		t.Errorf("DBName default = %v, want %v", config.DBName, "PancyMod")
	}

	if config.BrokerEnabled() {
		t.Error("BrokerEnabled() should be false without MQTT_Host")
	}

	if config.MQTTPort != "1883" {
		t.Errorf("MQTTPort default = %v, want %v", config.MQTTPort, "1883")
	}

	if config.ActionsDBPath != "data/actions.db" {
		t.Errorf("ActionsDBPath default = %v, want %v", config.ActionsDBPath, "data/actions.db")
	}

	if config.ObjectStoreEnabled() {
		t.Error("ObjectStoreEnabled() should be false without S3 credentials")
	}

	if config.Port != "3000" {
		t.Errorf("Port default = %v, want %v", config.Port, "3000")
	}

	if config.Environment != "dev" {
		t.Errorf("Environment default = %v, want %v", config.Environment, "dev")
	}
}

const guildsYAML = `
guilds:
  "100":
    log_channel: "1001"
  "200":
    log_channel: "2001"
    mirror: true
  "300":
    log_channel: "3001"
    mirror: true
    leveling_disabled: true
`

func TestParseGuilds(t *testing.T) {
	dir, err := ParseGuilds([]byte(guildsYAML))
	if err != nil {
		t.Fatalf("ParseGuilds() returned error: %v", err)
	}

	g, ok := dir.Guild("300")
	if !ok {
		t.Fatal("Guild(300) not found")
	}
	if g.LogChannelID != "3001" || !g.Mirror || !g.LevelingDisabled {
		t.Errorf("Guild(300) = %+v", g)
	}

	if _, ok := dir.Guild("999"); ok {
		t.Error("Guild(999) should not exist")
	}
}

func TestLogChannels(t *testing.T) {
	dir, err := ParseGuilds([]byte(guildsYAML))
	if err != nil {
		t.Fatalf("ParseGuilds() returned error: %v", err)
	}

	got := dir.LogChannels("100", false)
	sort.Strings(got)
	want := []string{"1001", "2001", "3001"}
	if len(got) != len(want) {
		t.Fatalf("LogChannels(100) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LogChannels(100)[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	hidden := dir.LogChannels("200", true)
	if len(hidden) != 1 || hidden[0] != "2001" {
		t.Errorf("LogChannels(200, hidden) = %v, want [2001]", hidden)
	}

	if unknown := dir.LogChannels("999", true); len(unknown) != 0 {
		t.Errorf("LogChannels(999, hidden) = %v, want none", unknown)
	}
}

func TestLoadGuildsMissingFile(t *testing.T) {
	dir, err := LoadGuilds(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadGuilds() returned error: %v", err)
	}
	if len(dir.Guilds) != 0 {
		t.Errorf("Guilds = %v, want empty", dir.Guilds)
	}
}

func TestLoadGuildsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guilds.yaml")
	if err := os.WriteFile(path, []byte("guilds: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGuilds(path); err == nil {
		t.Error("LoadGuilds() should fail on malformed YAML")
	}
}
