// Package mqtt publishes gauge readings to an MQTT broker.
//
// Each tick produces one retained JSON message on
// vacuum/gauge/{address}/reading, so a dashboard subscribing late still sees
// the latest pressures. The logger's own availability is announced on
// vacuum/system/status: "online" after connecting, "offline" on a graceful
// Close, and an "unexpected_disconnect" Last Will if the process dies.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	sink := client.Readings(cfg.Gauge.Address, runID)
//	_ = sink.WriteReading(ctx, reading)
//
// # Payload
//
// Channel values are JSON numbers, or null when the channel failed; the
// failure reason is reported under "errors". An ion value above the gauge's
// over-range code is published as-is with "overflow": true.
package mqtt
