package solis

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pisolar/energylog/internal/reading"
)

// Register describes one input register (or register pair).
type Register struct {
	Key      string
	Label    string
	Unit     string
	Address  uint16
	Width    int // 16 or 32
	Signed   bool
	Decimals int
	// PositiveOnly drops the value from the reading unless it is > 0.
	PositiveOnly bool
}

// Quantity is the number of 16-bit registers to read.
func (r Register) Quantity() uint16 {
	if r.Width == 32 {
		return 2
	}
	return 1
}

// Decode converts raw big-endian register bytes into a scaled value.
// 32-bit values are high word first.
func (r Register) Decode(b []byte) (float64, error) {
	want := int(r.Quantity()) * 2
	if len(b) < want {
		return 0, fmt.Errorf("register %d: got %d bytes, want %d", r.Address, len(b), want)
	}

	var raw float64
	switch r.Width {
	case 32:
		u := binary.BigEndian.Uint32(b[:4])
		if r.Signed {
			raw = float64(int32(u))
		} else {
			raw = float64(u)
		}
	default:
		u := binary.BigEndian.Uint16(b[:2])
		if r.Signed {
			raw = float64(int16(u))
		} else {
			raw = float64(u)
		}
	}

	if r.Decimals > 0 {
		raw /= math.Pow10(r.Decimals)
	}
	return raw, nil
}

// Registers is the read order and register map for the inverter.
var Registers = []Register{
	{Key: reading.ACVoltage, Label: "AC Volt", Unit: "V", Address: 3035, Width: 16, Decimals: 1},
	{Key: reading.ACCurrent, Label: "AC Current", Unit: "A", Address: 3038, Width: 16},
	{Key: reading.ACFrequency, Label: "AC Frequency", Unit: "Hz", Address: 3042, Width: 16, Decimals: 2},
	{Key: reading.InverterTemp, Label: "Inverter Temperature", Unit: "°C", Address: 3041, Width: 16, Signed: true, Decimals: 1},
	{Key: reading.AllTimeKWh, Label: "Generated (All time)", Unit: "kWh", Address: 3008, Width: 32, PositiveOnly: true},
	{Key: reading.TodayKWh, Label: "Generated (Today)", Unit: "kWh", Address: 3014, Width: 16, Decimals: 1, PositiveOnly: true},
	{Key: reading.DC1Voltage, Label: "DC1 Volt", Unit: "V", Address: 3021, Width: 16, Decimals: 2},
	{Key: reading.DC2Voltage, Label: "DC2 Volt", Unit: "V", Address: 3023, Width: 16, Decimals: 2},
	{Key: reading.DC1Current, Label: "DC1 Current", Unit: "A", Address: 3022, Width: 16, Decimals: 1},
	{Key: reading.DC2Current, Label: "DC2 Current", Unit: "A", Address: 3024, Width: 16, Decimals: 1},
	{Key: reading.PVPower, Label: "PV Power", Unit: "W", Address: 3007, Width: 16},
	{Key: reading.LastMonthKWh, Label: "Generated (Last Month)", Unit: "kWh", Address: 3013, Width: 16},
	{Key: reading.ThisMonthKWh, Label: "Generated (This Month)", Unit: "kWh", Address: 3011, Width: 16},
}

// offlineKeys are zeroed when the inverter does not answer.
var offlineKeys = []string{
	reading.ACVoltage,
	reading.ACCurrent,
	reading.ACFrequency,
	reading.InverterTemp,
	reading.DC1Current,
	reading.DC2Current,
	reading.DC1Voltage,
	reading.DC2Voltage,
	reading.PVPower,
}
