package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv("ENERGYLOG_ENV_FILE", "")
	content := `
octopus:
  api_key: "sk_test_key"
  import_mpan: "1100000000001"
  export_mpan: "1100000000002"
  serial_number: "21E0000001"
inverter:
  device: "/dev/ttyUSB0"
influxdb:
  url: "http://influx.local:8086"
  bucket: "solar"
logging:
  level: "debug"
`
	configPath := writeConfig(t, t.TempDir(), content)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Octopus.APIKey != "sk_test_key" {
		t.Errorf("Octopus.APIKey = %q, want %q", cfg.Octopus.APIKey, "sk_test_key")
	}
	if cfg.Octopus.ExportMPAN != "1100000000002" {
		t.Errorf("Octopus.ExportMPAN = %q, want %q", cfg.Octopus.ExportMPAN, "1100000000002")
	}
	if cfg.Inverter.Device != "/dev/ttyUSB0" {
		t.Errorf("Inverter.Device = %q, want %q", cfg.Inverter.Device, "/dev/ttyUSB0")
	}
	// Unset keys keep their defaults
	if cfg.Inverter.BaudRate != 9600 {
		t.Errorf("Inverter.BaudRate = %d, want 9600", cfg.Inverter.BaudRate)
	}
	if cfg.InfluxDB.Measurement != "solar" {
		t.Errorf("InfluxDB.Measurement = %q, want %q", cfg.InfluxDB.Measurement, "solar")
	}
	if err := cfg.ValidateOctopus(); err != nil {
		t.Errorf("ValidateOctopus() error = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "invalid: [yaml: content")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	t.Setenv("ENERGYLOG_ENV_FILE", "")
	// Register for cleanup before godotenv sets it
	t.Setenv("ENERGYLOG_OCTOPUS_API_KEY", "")
	os.Unsetenv("ENERGYLOG_OCTOPUS_API_KEY")

	dir := t.TempDir()
	configPath := writeConfig(t, dir, "octopus:\n  import_mpan: \"1\"\n")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ENERGYLOG_OCTOPUS_API_KEY=from-dotenv\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Octopus.APIKey != "from-dotenv" {
		t.Errorf("Octopus.APIKey = %q, want %q", cfg.Octopus.APIKey, "from-dotenv")
	}
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	t.Setenv("ENERGYLOG_OCTOPUS_API_KEY", "from-env")

	dir := t.TempDir()
	envPath := filepath.Join(dir, "secrets.env")
	if err := os.WriteFile(envPath, []byte("ENERGYLOG_OCTOPUS_API_KEY=from-dotenv\n"), 0600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("ENERGYLOG_ENV_FILE", envPath)
	configPath := writeConfig(t, dir, "octopus: {}\n")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Octopus.APIKey != "from-env" {
		t.Errorf("Octopus.APIKey = %q, want %q", cfg.Octopus.APIKey, "from-env")
	}
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	t.Setenv("ENERGYLOG_ENV_FILE", "/nonexistent/energylog.env")
	configPath := writeConfig(t, t.TempDir(), "octopus: {}\n")

	if _, err := Load(configPath); err == nil {
		t.Error("Load() expected error for missing ENERGYLOG_ENV_FILE, got nil")
	}
}

func validOctopusConfig() *Config {
	cfg := defaultConfig()
	cfg.Octopus.APIKey = "sk_test_key"
	cfg.Octopus.ImportMPAN = "1100000000001"
	cfg.Octopus.ExportMPAN = "1100000000002"
	cfg.Octopus.SerialNumber = "21E0000001"
	return cfg
}

func TestConfig_ValidateOctopus(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.Octopus.APIKey = "" }, wantErr: "octopus.api_key"},
		{name: "missing import mpan", mutate: func(c *Config) { c.Octopus.ImportMPAN = "" }, wantErr: "octopus.import_mpan"},
		{name: "missing export mpan", mutate: func(c *Config) { c.Octopus.ExportMPAN = "" }, wantErr: "octopus.export_mpan"},
		{name: "missing serial", mutate: func(c *Config) { c.Octopus.SerialNumber = "" }, wantErr: "octopus.serial_number"},
		{name: "negative timeout", mutate: func(c *Config) { c.Octopus.Timeout = -1 }, wantErr: "octopus.timeout"},
		{name: "missing influx url", mutate: func(c *Config) { c.InfluxDB.URL = "" }, wantErr: "influxdb.url"},
		{name: "influx disabled skips url", mutate: func(c *Config) { c.InfluxDB.Enabled = false; c.InfluxDB.URL = "" }},
		{name: "journal without path", mutate: func(c *Config) { c.Journal.Enabled = true; c.Journal.Path = "" }, wantErr: "journal.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validOctopusConfig()
			tt.mutate(cfg)
			err := cfg.ValidateOctopus()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateOctopus() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateOctopus() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateInverter(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "missing device", mutate: func(c *Config) { c.Inverter.Device = "" }, wantErr: true},
		{name: "unit id zero", mutate: func(c *Config) { c.Inverter.UnitID = 0 }, wantErr: true},
		{name: "unit id too high", mutate: func(c *Config) { c.Inverter.UnitID = 248 }, wantErr: true},
		{name: "bad parity", mutate: func(c *Config) { c.Inverter.Parity = "X" }, wantErr: true},
		{name: "even parity", mutate: func(c *Config) { c.Inverter.Parity = "E" }},
		{name: "bad stop bits", mutate: func(c *Config) { c.Inverter.StopBits = 3 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Inverter.Timeout = 0 }, wantErr: true},
		{name: "mqtt enabled bad qos", mutate: func(c *Config) { c.MQTT.Enabled = true; c.MQTT.QoS = 3 }, wantErr: true},
		{name: "mqtt disabled bad qos ignored", mutate: func(c *Config) { c.MQTT.QoS = 3 }},
		{name: "octopus credentials not required", mutate: func(c *Config) { c.Octopus.APIKey = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.ValidateInverter()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInverter() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := &Config{
		Octopus:  OctopusConfig{Timeout: 30},
		Inverter: InverterConfig{Timeout: 3},
	}

	if got := cfg.OctopusTimeout(); got != 30*time.Second {
		t.Errorf("OctopusTimeout() = %v, want 30s", got)
	}
	if got := cfg.InverterTimeout(); got != 3*time.Second {
		t.Errorf("InverterTimeout() = %v, want 3s", got)
	}
}

func TestLoad_ShippedConfigMatchesDefaults(t *testing.T) {
	t.Setenv("ENERGYLOG_ENV_FILE", "")

	cfg, err := Load(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := defaultConfig()

	if cfg.Octopus.Timeout != def.Octopus.Timeout || cfg.OctopusTimeout() != 0 {
		t.Errorf("octopus.timeout = %d, want the default %d", cfg.Octopus.Timeout, def.Octopus.Timeout)
	}
	if cfg.Inverter.Timeout != def.Inverter.Timeout {
		t.Errorf("inverter.timeout = %d, want the default %d", cfg.Inverter.Timeout, def.Inverter.Timeout)
	}
	if cfg.Run.FailOnTotalFailure {
		t.Error("run.fail_on_total_failure should ship disabled")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("ENERGYLOG_OCTOPUS_API_KEY", "env-key")
	t.Setenv("ENERGYLOG_OCTOPUS_IMPORT_MPAN", "env-import")
	t.Setenv("ENERGYLOG_OCTOPUS_EXPORT_MPAN", "env-export")
	t.Setenv("ENERGYLOG_OCTOPUS_SERIAL", "env-serial")
	t.Setenv("ENERGYLOG_SERIAL_DEVICE", "/dev/ttyUSB1")
	t.Setenv("ENERGYLOG_INFLUXDB_URL", "http://influx:8086")
	t.Setenv("ENERGYLOG_INFLUXDB_TOKEN", "user:pass")
	t.Setenv("ENERGYLOG_MQTT_PASSWORD", "mqttpass")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Octopus.APIKey", cfg.Octopus.APIKey, "env-key"},
		{"Octopus.ImportMPAN", cfg.Octopus.ImportMPAN, "env-import"},
		{"Octopus.ExportMPAN", cfg.Octopus.ExportMPAN, "env-export"},
		{"Octopus.SerialNumber", cfg.Octopus.SerialNumber, "env-serial"},
		{"Inverter.Device", cfg.Inverter.Device, "/dev/ttyUSB1"},
		{"InfluxDB.URL", cfg.InfluxDB.URL, "http://influx:8086"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "user:pass"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "mqttpass"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Octopus.BaseURL != "https://api.octopus.energy/v1/" {
		t.Errorf("defaultConfig Octopus.BaseURL = %q", cfg.Octopus.BaseURL)
	}
	if cfg.Inverter.Device != "/dev/ttyAMA0" {
		t.Errorf("defaultConfig Inverter.Device = %q, want /dev/ttyAMA0", cfg.Inverter.Device)
	}
	if cfg.Inverter.Timeout != 3 {
		t.Errorf("defaultConfig Inverter.Timeout = %d, want 3", cfg.Inverter.Timeout)
	}
	if cfg.InfluxDB.InverterTag != "solis" {
		t.Errorf("defaultConfig InfluxDB.InverterTag = %q, want solis", cfg.InfluxDB.InverterTag)
	}
	if cfg.Run.FailOnTotalFailure {
		t.Error("defaultConfig Run.FailOnTotalFailure should be false")
	}
}

func TestConfig_MetricsTextfile(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.MetricsTextfile("solis"); got != "" {
		t.Errorf("MetricsTextfile() with no dir = %q, want empty", got)
	}

	cfg.Metrics.TextfileDir = "/var/lib/node_exporter/textfile"
	want := "/var/lib/node_exporter/textfile/energylog_solis.prom"
	if got := cfg.MetricsTextfile("solis"); got != want {
		t.Errorf("MetricsTextfile() = %q, want %q", got, want)
	}
}
