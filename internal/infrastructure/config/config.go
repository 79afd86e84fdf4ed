package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for energylog.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Octopus  OctopusConfig  `yaml:"octopus"`
	Inverter InverterConfig `yaml:"inverter"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Journal  JournalConfig  `yaml:"journal"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Run      RunConfig      `yaml:"run"`
}

// OctopusConfig contains Octopus Energy API settings.
type OctopusConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	ImportMPAN   string `yaml:"import_mpan"`
	ExportMPAN   string `yaml:"export_mpan"`
	SerialNumber string `yaml:"serial_number"`

	// Timeout is the HTTP request timeout in seconds. 0 leaves the
	// transport default in place.
	Timeout int `yaml:"timeout"`
}

// InverterConfig contains the Modbus RTU settings for the Solis inverter.
type InverterConfig struct {
	Device   string `yaml:"device"`
	UnitID   int    `yaml:"unit_id"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`

	// Timeout is the per-operation serial timeout in seconds.
	Timeout int `yaml:"timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
//
// For InfluxDB 1.8 the token is "username:password" (or empty) and the
// bucket is "database/retention-policy" or just "database".
type InfluxDBConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
	// InverterTag is the value of the "Inverter" tag on every point.
	InverterTag string `yaml:"inverter_tag"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// JournalConfig contains the SQLite run journal settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MetricsConfig contains Prometheus textfile settings.
type MetricsConfig struct {
	// TextfileDir is node_exporter's textfile collector directory. Each
	// program writes energylog_<program>.prom there. Empty disables run
	// metrics.
	TextfileDir string `yaml:"textfile_dir"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// RunConfig controls process-level behaviour.
type RunConfig struct {
	// FailOnTotalFailure makes a run exit non-zero when at least one error
	// occurred and no point was written.
	FailOnTotalFailure bool `yaml:"fail_on_total_failure"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. .env file next to the config, or ENERGYLOG_ENV_FILE (never overrides the real environment)
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern: ENERGYLOG_SECTION_KEY
// For example: ENERGYLOG_OCTOPUS_API_KEY, ENERGYLOG_INFLUXDB_TOKEN
//
// Load does not validate; each program calls the Validate* method for
// the sections it needs.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := loadDotEnv(path); err != nil {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadDotEnv loads secrets from a .env file into the process environment.
// A missing default file is not an error; a missing explicit file is.
func loadDotEnv(configPath string) error {
	if explicit := os.Getenv("ENERGYLOG_ENV_FILE"); explicit != "" {
		return godotenv.Load(explicit)
	}

	candidate := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(candidate)
}

// defaultConfig returns a Config with the values the original deployment used.
func defaultConfig() *Config {
	return &Config{
		Octopus: OctopusConfig{
			BaseURL: "https://api.octopus.energy/v1/",
		},
		Inverter: InverterConfig{
			Device:   "/dev/ttyAMA0",
			UnitID:   1,
			BaudRate: 9600,
			DataBits: 8,
			Parity:   "N",
			StopBits: 1,
			Timeout:  3,
		},
		InfluxDB: InfluxDBConfig{
			Enabled:     true,
			URL:         "http://127.0.0.1:8086",
			Bucket:      "solar",
			Measurement: "solar",
			InverterTag: "solis",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "energylog",
			},
			QoS: 1,
		},
		Journal: JournalConfig{
			Path:        "./data/energylog.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Octopus
	if v := os.Getenv("ENERGYLOG_OCTOPUS_API_KEY"); v != "" {
		cfg.Octopus.APIKey = v
	}
	if v := os.Getenv("ENERGYLOG_OCTOPUS_IMPORT_MPAN"); v != "" {
		cfg.Octopus.ImportMPAN = v
	}
	if v := os.Getenv("ENERGYLOG_OCTOPUS_EXPORT_MPAN"); v != "" {
		cfg.Octopus.ExportMPAN = v
	}
	if v := os.Getenv("ENERGYLOG_OCTOPUS_SERIAL"); v != "" {
		cfg.Octopus.SerialNumber = v
	}

	// Inverter
	if v := os.Getenv("ENERGYLOG_SERIAL_DEVICE"); v != "" {
		cfg.Inverter.Device = v
	}

	// InfluxDB
	if v := os.Getenv("ENERGYLOG_INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("ENERGYLOG_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// MQTT
	if v := os.Getenv("ENERGYLOG_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// ValidateOctopus checks the sections the octopus program depends on.
func (c *Config) ValidateOctopus() error {
	var errs []string

	if c.Octopus.BaseURL == "" {
		errs = append(errs, "octopus.base_url is required")
	}
	if c.Octopus.APIKey == "" {
		errs = append(errs, "octopus.api_key is required (set ENERGYLOG_OCTOPUS_API_KEY environment variable)")
	}
	if c.Octopus.ImportMPAN == "" {
		errs = append(errs, "octopus.import_mpan is required")
	}
	if c.Octopus.ExportMPAN == "" {
		errs = append(errs, "octopus.export_mpan is required")
	}
	if c.Octopus.SerialNumber == "" {
		errs = append(errs, "octopus.serial_number is required")
	}
	if c.Octopus.Timeout < 0 {
		errs = append(errs, "octopus.timeout must not be negative")
	}
	errs = append(errs, c.validateCommon()...)

	return joinErrors(errs)
}

// ValidateInverter checks the sections the solis program depends on.
func (c *Config) ValidateInverter() error {
	var errs []string

	if c.Inverter.Device == "" {
		errs = append(errs, "inverter.device is required")
	}
	if c.Inverter.UnitID < 1 || c.Inverter.UnitID > 247 {
		errs = append(errs, "inverter.unit_id must be between 1 and 247")
	}
	if c.Inverter.BaudRate <= 0 {
		errs = append(errs, "inverter.baud_rate must be positive")
	}
	if c.Inverter.DataBits < 5 || c.Inverter.DataBits > 8 {
		errs = append(errs, "inverter.data_bits must be between 5 and 8")
	}
	switch c.Inverter.Parity {
	case "N", "E", "O":
	default:
		errs = append(errs, "inverter.parity must be N, E, or O")
	}
	if c.Inverter.StopBits != 1 && c.Inverter.StopBits != 2 {
		errs = append(errs, "inverter.stop_bits must be 1 or 2")
	}
	if c.Inverter.Timeout <= 0 {
		errs = append(errs, "inverter.timeout must be positive")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}
	errs = append(errs, c.validateCommon()...)

	return joinErrors(errs)
}

// validateCommon checks the store and journal sections shared by both programs.
func (c *Config) validateCommon() []string {
	var errs []string

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required")
		}
	}
	if c.InfluxDB.Measurement == "" {
		errs = append(errs, "influxdb.measurement is required")
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal is enabled")
	}

	return errs
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// MetricsTextfile returns the .prom path for program, or "" when metrics
// are disabled.
func (c *Config) MetricsTextfile(program string) string {
	if c.Metrics.TextfileDir == "" {
		return ""
	}
	return filepath.Join(c.Metrics.TextfileDir, "energylog_"+program+".prom")
}

// OctopusTimeout returns the API request timeout as a Duration.
func (c *Config) OctopusTimeout() time.Duration {
	return time.Duration(c.Octopus.Timeout) * time.Second
}

// InverterTimeout returns the serial timeout as a Duration.
func (c *Config) InverterTimeout() time.Duration {
	return time.Duration(c.Inverter.Timeout) * time.Second
}
