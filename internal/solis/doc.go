// Package solis reads live telemetry from a Ginlong Solis inverter over
// Modbus RTU.
//
// The inverter sits on an RS-485 line (9600 8N1, unit 1 by default) and
// exposes its measurements as input registers (function code 4). Each
// register in the map has a width, a signedness and a decimal scale.
//
// The inverter powers down overnight and stops answering. Read reports
// that as ErrNoResponse so the caller can record a zeroed reading and
// keep the series continuous. While powering up it also reports zero for
// the lifetime and daily generation totals; those two registers are
// dropped from the reading unless strictly positive.
package solis
