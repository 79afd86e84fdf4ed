// Package influxdb provides InfluxDB connectivity for energylog.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, single-point blocking writes, and health checks. The same
// client talks to InfluxDB 2.x and to 1.8 through its v2 compatibility API
// (token "user:password", bucket "database/retention-policy").
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    // log and carry on with a nil store; the writer reports it
//	}
//	defer client.Close()
//
//	err = client.WritePoint(ctx, point)
//
// # Error Handling
//
// Connection errors are returned from Connect. Write errors are returned
// from WritePoint wrapped with one of ErrConnectionFailed, ErrValueRejected
// or ErrWriteFailed.
package influxdb
