// Package influxdb mirrors gauge readings into InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library. Each reading becomes
// one point in the "pressure" measurement, tagged with the gauge address
// and the run id. Channels without a value are omitted from the point.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	sink := client.Pressure(cfg.Gauge.Address, runID)
//	_ = sink.WriteReading(ctx, reading)
//
// # Error Handling
//
// Writes are non-blocking and batched (batch_size, flush_interval); write
// failures are delivered to the SetOnError callback. Connection and health
// check errors are returned directly.
package influxdb
