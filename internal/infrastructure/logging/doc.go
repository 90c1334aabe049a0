// Package logging provides structured logging for irclimate.
//
// It wraps log/slog so every entry carries the service name and version.
// JSON output is the default; text output is available for development.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log MQTT passwords or InfluxDB tokens.
package logging
