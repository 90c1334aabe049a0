// Package mqtt provides the MQTT connection used by the IR bridge.
//
// The broker carries three kinds of traffic:
//
//	graylogic/command/ir/{device}   climate calls in
//	graylogic/state/ir/{device}     retained climate state out
//	graylogic/ir/{id}/transmit      raw IR frames to blasters
//	graylogic/ir/{id}/receive       raw IR frames from receivers
//
// The client reconnects with backoff, restores subscriptions after a
// reconnect and recovers panics in handlers. A retained status on
// graylogic/system/irclimate/status reports online and offline, with the
// offline message registered as the Last Will.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllCommands(), 1, handler)
package mqtt
