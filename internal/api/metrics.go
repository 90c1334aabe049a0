package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/gray-logic-irclimate/internal/bridges/ir"
)

// SystemMetrics is the JSON system summary at /api/v1/metrics.
// Prometheus scrapes /metrics instead.
type SystemMetrics struct {
	Timestamp     string               `json:"timestamp"`
	Version       string               `json:"version"`
	UptimeSeconds int64                `json:"uptime_seconds"`
	Runtime       RuntimeMetrics       `json:"runtime"`
	WebSocket     WSMetrics            `json:"websocket"`
	MQTT          MQTTMetrics          `json:"mqtt"`
	Bridge        *ir.BridgeStatistics `json:"bridge,omitempty"`
	Devices       DeviceMetrics        `json:"devices"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

// DeviceMetrics contains device registry statistics.
type DeviceMetrics struct {
	Total      int            `json:"total"`
	WithState  int            `json:"with_state"`
	ByPlatform map[string]int `json:"by_platform"`
}

// handleMetrics returns the system summary.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
	}

	if s.mqtt != nil {
		metrics.MQTT = MQTTMetrics{Connected: s.mqtt.IsConnected()}
	}

	if s.bridge != nil {
		stats := s.bridge.Statistics()
		metrics.Bridge = &stats
	}

	regStats := s.devices.GetStats()
	metrics.Devices = DeviceMetrics{
		Total:      regStats.TotalDevices,
		WithState:  regStats.WithState,
		ByPlatform: regStats.ByPlatform,
	}
	if metrics.Devices.ByPlatform == nil {
		metrics.Devices.ByPlatform = map[string]int{}
	}

	writeJSON(w, http.StatusOK, metrics)
}
