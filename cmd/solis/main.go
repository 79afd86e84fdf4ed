// Command solis reads the Solis inverter over Modbus RTU and records the
// reading in InfluxDB, optionally mirroring it to MQTT.
//
// Run it from cron every few minutes. Overnight the inverter is off and
// a zeroed reading is recorded instead.
package main

import (
	"context"
	"os"

	"github.com/pisolar/energylog/internal/app"
	"github.com/pisolar/energylog/internal/failure"
	"github.com/pisolar/energylog/internal/infrastructure/config"
	"github.com/pisolar/energylog/internal/infrastructure/mqtt"
	"github.com/pisolar/energylog/internal/pipeline"
	"github.com/pisolar/energylog/internal/solis"
)

// Set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const program = "solis"

func main() {
	os.Exit(app.Main(app.Program{
		Name:     program,
		Build:    app.Build{Version: version, Commit: commit, Date: date},
		Validate: (*config.Config).ValidateInverter,
		Job:      collect,
	}))
}

func collect(ctx context.Context, env *app.Env) failure.Tally {
	inv := env.Config.Inverter
	serialCfg := solis.SerialConfig{
		Device:   inv.Device,
		UnitID:   byte(inv.UnitID),
		BaudRate: inv.BaudRate,
		DataBits: inv.DataBits,
		Parity:   inv.Parity,
		StopBits: inv.StopBits,
		Timeout:  env.Config.InverterTimeout(),
	}

	dial := func() (pipeline.InverterConn, error) {
		conn, err := solis.Dial(serialCfg)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}

	p := pipeline.NewSolis(dial, env.Writer, env.Policy, env.Log)

	if env.Config.MQTT.Enabled {
		client, err := mqtt.Connect(env.Config.MQTT, program)
		if err != nil {
			env.Policy.Handle("connect mqtt", failure.Transport("mqtt connect", err))
		} else {
			defer func() {
				if err := client.Close(); err != nil {
					env.Log.Error("error closing MQTT", "error", err)
				}
			}()
			p.WithPublisher(client, mqtt.Topics{}.State(program, "inverter"))
		}
	}

	return p.Run(ctx)
}
