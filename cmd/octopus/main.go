// Command octopus records yesterday's electricity import and export
// totals from the Octopus Energy API into InfluxDB.
//
// It is meant to run from cron a few times a day; Octopus publishes a
// day's consumption with a lag, so later runs fill in what earlier ones
// missed.
package main

import (
	"context"
	"os"

	"github.com/pisolar/energylog/internal/app"
	"github.com/pisolar/energylog/internal/failure"
	"github.com/pisolar/energylog/internal/infrastructure/config"
	"github.com/pisolar/energylog/internal/octopus"
	"github.com/pisolar/energylog/internal/pipeline"
)

// Set at build time via ldflags, e.g.
// go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(app.Main(app.Program{
		Name:     "octopus",
		Build:    app.Build{Version: version, Commit: commit, Date: date},
		Validate: (*config.Config).ValidateOctopus,
		Job:      collect,
	}))
}

func collect(ctx context.Context, env *app.Env) failure.Tally {
	cfg := env.Config.Octopus

	client := octopus.NewClient(octopus.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: env.Config.OctopusTimeout(),
		Log:     env.Log,
	})

	meters := pipeline.Meters{
		ImportMPAN: cfg.ImportMPAN,
		ExportMPAN: cfg.ExportMPAN,
		Serial:     cfg.SerialNumber,
	}

	return pipeline.NewOctopus(client, meters, env.Writer, env.Policy, env.Log).Run(ctx)
}
