package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/segmentio/encoding/json"

	"github.com/pisolar/energylog/internal/infrastructure/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is in milliseconds.
	defaultDisconnectQuiesce = 250

	defaultKeepAlive = 30 * time.Second

	maxQoS = 2

	tlsMinVersion = tls.VersionTLS12
)

// brokerURL returns tcp:// or ssl:// depending on cfg.Broker.TLS.
func brokerURL(cfg config.MQTTConfig) string {
	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)
}

// buildClientOptions creates paho options for a one-shot publisher. There
// is no auto-reconnect; a run that loses the broker logs and moves on.
func buildClientOptions(cfg config.MQTTConfig, program string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(brokerURL(cfg))

	clientID := cfg.Broker.ClientID
	if clientID == "" {
		clientID = "energylog"
	}
	// Both programs may run in the same minute.
	opts.SetClientID(clientID + "-" + program)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(false)
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tlsMinVersion})
	}

	return opts
}

// statusPayload is the body published on the status topic.
type statusPayload struct {
	Status    string `json:"status"`
	Program   string `json:"program"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

func buildStatusPayload(status, program, reason string, now time.Time) []byte {
	b, err := json.Marshal(statusPayload{
		Status:    status,
		Program:   program,
		Reason:    reason,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		// Only strings; cannot fail.
		panic(err)
	}
	return b
}

// configureLWT makes the broker publish an offline status if the program
// disconnects without calling Close.
func configureLWT(opts *pahomqtt.ClientOptions, program string) {
	payload := buildStatusPayload("offline", program, "unexpected_disconnect", time.Now())
	opts.SetBinaryWill(Topics{}.Status(program), payload, 1, true)
}
