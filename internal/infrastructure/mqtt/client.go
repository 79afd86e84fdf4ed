package mqtt

import (
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pisolar/energylog/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for one program run.
// All methods are safe for concurrent use.
type Client struct {
	client  pahomqtt.Client
	cfg     config.MQTTConfig
	program string

	mu     sync.Mutex
	closed bool
}

// Connect connects to the broker and publishes an online status for
// program. It fails if the broker does not accept the connection within
// the connect timeout.
func Connect(cfg config.MQTTConfig, program string) (*Client, error) {
	opts := buildClientOptions(cfg, program)
	configureLWT(opts, program)

	c := &Client{
		client:  pahomqtt.NewClient(opts),
		cfg:     cfg,
		program: program,
	}

	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if err := c.PublishRetained(Topics{}.Status(program), buildStatusPayload("online", program, "", time.Now())); err != nil {
		c.client.Disconnect(defaultDisconnectQuiesce)
		return nil, err
	}

	return c, nil
}

// IsConnected reports whether the client is connected and not closed.
func (c *Client) IsConnected() bool {
	if c == nil || c.client == nil {
		return false
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	return !closed && c.client.IsConnected()
}

// Close publishes a graceful offline status and disconnects. Calling it
// more than once is safe.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}

	if c.IsConnected() {
		payload := buildStatusPayload("offline", c.program, "graceful_shutdown", time.Now())
		token := c.client.Publish(Topics{}.Status(c.program), byte(c.cfg.QoS), true, payload)
		token.WaitTimeout(defaultPublishTimeout)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}
