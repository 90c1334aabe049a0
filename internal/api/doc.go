// Package api implements the HTTP REST API and WebSocket stream for the
// irclimate daemon.
//
// This package provides:
//   - REST endpoints to list climate units, read their state and history
//   - A control endpoint that applies a climate call through the IR bridge
//   - A WebSocket hub relaying state changes from MQTT
//   - Prometheus metrics at /metrics and a JSON system summary
//   - Middleware stack (request ID, logging, recovery, CORS)
//
// # Graceful Degradation
//
// The server operates without MQTT or a bridge: reads keep working from the
// device registry, only control calls and the live stream are unavailable.
package api
