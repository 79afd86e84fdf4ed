package solis

import (
	"fmt"
	"time"

	"github.com/goburrow/modbus"

	"github.com/pisolar/energylog/internal/failure"
)

// SerialConfig describes the RS-485 line.
type SerialConfig struct {
	Device   string
	UnitID   byte
	BaudRate int
	DataBits int
	Parity   string // "N", "E" or "O"
	StopBits int
	Timeout  time.Duration
}

// DefaultSerialConfig returns the settings the inverter ships with.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		Device:   "/dev/ttyAMA0",
		UnitID:   1,
		BaudRate: 9600,
		DataBits: 8,
		Parity:   "N",
		StopBits: 1,
		Timeout:  3 * time.Second,
	}
}

// RegisterReader reads input registers (function code 4).
// modbus.Client satisfies it.
type RegisterReader interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// Conn is an open Modbus RTU connection.
type Conn struct {
	handler *modbus.RTUClientHandler
	client  modbus.Client
}

// Dial opens the serial port.
func Dial(cfg SerialConfig) (*Conn, error) {
	handler := modbus.NewRTUClientHandler(cfg.Device)
	handler.BaudRate = cfg.BaudRate
	handler.DataBits = cfg.DataBits
	handler.Parity = cfg.Parity
	handler.StopBits = cfg.StopBits
	handler.SlaveId = cfg.UnitID
	handler.Timeout = cfg.Timeout

	if err := handler.Connect(); err != nil {
		return nil, failure.Transport("open serial port", fmt.Errorf("%s: %w", cfg.Device, err))
	}

	return &Conn{
		handler: handler,
		client:  modbus.NewClient(handler),
	}, nil
}

// ReadInputRegisters implements RegisterReader.
func (c *Conn) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	return c.client.ReadInputRegisters(address, quantity)
}

// Close releases the serial port.
func (c *Conn) Close() error {
	return c.handler.Close()
}
