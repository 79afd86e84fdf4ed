// Package mqtt publishes energylog state to an MQTT broker.
//
// The programs run from cron and exit after one reading, so the client
// is a short-lived publisher: connect, publish retained state, publish a
// graceful status, disconnect. A Last Will marks the program offline if
// it dies mid-run.
//
// Topics:
//
//	energylog/state/{source}/{device}   retained JSON reading
//	energylog/status/{program}          retained online/offline status
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT, "solis")
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.State("solis", "inverter"), payload)
package mqtt
