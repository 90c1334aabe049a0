// Package influxdb records climate telemetry in InfluxDB v2.
//
// Every state change of an IR climate unit becomes a climate_state point
// tagged with device, mode, fan and swing. Raw IR frames become ir_frames
// points and sensor readings room_temperature points. All of them carry the
// site_id tag. Writes are non-blocking and batched according to batch_size
// and flush_interval in config.yaml. Async write errors are delivered to the
// SetOnError callback.
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Site.ID)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without telemetry
//	}
//	defer client.Close()
//
//	client.WriteClimateState("living-room-ac", st)
package influxdb
