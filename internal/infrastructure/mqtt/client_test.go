package mqtt

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/pisolar/energylog/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "energylog-test",
		},
		QoS: 1,
	}
}

// skipIfNoBroker skips integration tests when nothing listens on 1883.
func skipIfNoBroker(t *testing.T) {
	t.Helper()

	conn, err := net.DialTimeout("tcp", "127.0.0.1:1883", 500*time.Millisecond)
	if err != nil {
		t.Skip("MQTT broker not available at 127.0.0.1:1883")
	}
	conn.Close()
}

func TestTopics(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Topics{}.State("solis", "inverter"), "energylog/state/solis/inverter"},
		{Topics{}.Status("solis"), "energylog/status/solis"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("topic = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestBrokerURL(t *testing.T) {
	cfg := testConfig()
	if got := brokerURL(cfg); got != "tcp://127.0.0.1:1883" {
		t.Errorf("brokerURL() = %q", got)
	}

	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883
	if got := brokerURL(cfg); got != "ssl://127.0.0.1:8883" {
		t.Errorf("brokerURL() with TLS = %q", got)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "solar"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg, "solis")

	if opts.ClientID != "energylog-test-solis" {
		t.Errorf("ClientID = %q, want energylog-test-solis", opts.ClientID)
	}
	if opts.Username != "solar" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q", opts.Username, opts.Password)
	}
	if opts.AutoReconnect {
		t.Error("AutoReconnect = true, want false for a one-shot publisher")
	}
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig(), "solis")
	configureLWT(opts, "solis")

	if !opts.WillEnabled || !opts.WillRetained {
		t.Fatal("will should be enabled and retained")
	}
	if opts.WillTopic != "energylog/status/solis" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}

	var p statusPayload
	if err := json.Unmarshal(opts.WillPayload, &p); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if p.Status != "offline" || p.Reason != "unexpected_disconnect" || p.Program != "solis" {
		t.Errorf("will payload = %+v", p)
	}
}

func TestBuildStatusPayload(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	got := string(buildStatusPayload("online", "octopus", "", now))

	want := `{"status":"online","program":"octopus","timestamp":"2024-06-01T12:00:00Z"}`
	if got != want {
		t.Errorf("payload = %s, want %s", got, want)
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{cfg: testConfig()}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		want    error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"bad qos", "energylog/state/solis/inverter", []byte("x"), 3, ErrInvalidQoS},
		{"too large", "energylog/state/solis/inverter", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "energylog/state/solis/inverter", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, true)
			if !errors.Is(err, tt.want) {
				t.Errorf("Publish() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPublishJSON_Unencodable(t *testing.T) {
	c := &Client{cfg: testConfig()}
	err := c.PublishJSON("energylog/state/solis/inverter", map[string]any{"bad": make(chan int)})
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishJSON() error = %v, want ErrPublishFailed", err)
	}
}

func TestClose_NilAndUnconnected(t *testing.T) {
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("Close() on nil = %v", err)
	}
	if nilClient.IsConnected() {
		t.Error("nil client reports connected")
	}
	if err := (&Client{}).Close(); err != nil {
		t.Errorf("Close() on zero client = %v", err)
	}
}

func TestConnect_InvalidBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999

	_, err := Connect(cfg, "solis")
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_PublishAndClose(t *testing.T) {
	skipIfNoBroker(t)

	c, err := Connect(testConfig(), "solis-test")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !c.IsConnected() {
		t.Fatal("IsConnected() = false after Connect")
	}

	payload := map[string]any{"pvpower": 2350.0, "online": true}
	if err := c.PublishJSON(Topics{}.State("solis", "test"), payload); err != nil {
		t.Errorf("PublishJSON() error = %v", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}

	err = c.PublishJSON(Topics{}.State("solis", "test"), payload)
	if err == nil || !strings.Contains(err.Error(), "not connected") {
		t.Errorf("PublishJSON() after Close = %v, want not connected", err)
	}
}
