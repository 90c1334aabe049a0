package device

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry caches the configured devices in memory on top of a Repository.
//
// The cache is populated by RefreshCache and kept in step by every write.
// Devices handed out are deep copies.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Device
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a new device registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Device),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all devices from the repository.
func (r *Registry) RefreshCache(ctx context.Context) error {
	devices, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Device, len(devices))
	for i := range devices {
		r.cache[devices[i].ID] = devices[i].DeepCopy()
	}

	r.logger.Info("device cache refreshed", "count", len(devices))
	return nil
}

// GetDevice retrieves a device by ID.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) GetDevice(ctx context.Context, id string) (*Device, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()
	if ok {
		return cached.DeepCopy(), nil
	}

	device, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cacheMu.Lock()
	r.cache[id] = device.DeepCopy()
	r.cacheMu.Unlock()

	return device, nil
}

// GetDeviceBySlug retrieves a device by its URL-safe slug from the cache.
func (r *Registry) GetDeviceBySlug(_ context.Context, slug string) (*Device, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	for _, d := range r.cache {
		if d.Slug == slug {
			return d.DeepCopy(), nil
		}
	}
	return nil, ErrDeviceNotFound
}

// ListDevices returns all devices sorted by ID.
func (r *Registry) ListDevices(ctx context.Context) ([]Device, error) {
	r.cacheMu.RLock()
	if len(r.cache) > 0 {
		devices := make([]Device, 0, len(r.cache))
		for _, id := range slices.Sorted(maps.Keys(r.cache)) {
			devices = append(devices, *r.cache[id].DeepCopy())
		}
		r.cacheMu.RUnlock()
		return devices, nil
	}
	r.cacheMu.RUnlock()

	return r.repo.List(ctx)
}

// GetDeviceCount returns the number of cached devices.
func (r *Registry) GetDeviceCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// SyncResult counts the changes made by SyncDevices.
type SyncResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// SyncDevices makes the registry hold exactly the given devices.
//
// New devices are created, existing ones have their definition updated with
// their recorded state preserved, and devices no longer configured are
// removed. A device that fails validation aborts the sync before anything
// is written.
func (r *Registry) SyncDevices(ctx context.Context, devices []Device) (SyncResult, error) {
	var result SyncResult

	wanted := make(map[string]struct{}, len(devices))
	for i := range devices {
		d := &devices[i]
		if d.Slug == "" {
			d.Slug = GenerateSlug(d.Name)
		}
		if err := ValidateDevice(d); err != nil {
			return result, fmt.Errorf("device %q: %w", d.ID, err)
		}
		if _, dup := wanted[d.ID]; dup {
			return result, fmt.Errorf("device %q: %w", d.ID, ErrDeviceExists)
		}
		wanted[d.ID] = struct{}{}
	}

	existing, err := r.repo.List(ctx)
	if err != nil {
		return result, fmt.Errorf("loading devices: %w", err)
	}
	current := make(map[string]Device, len(existing))
	for _, d := range existing {
		current[d.ID] = d
	}

	for i := range devices {
		d := devices[i].DeepCopy()
		if prev, ok := current[d.ID]; ok {
			d.State = prev.State
			d.StateUpdatedAt = prev.StateUpdatedAt
			d.CreatedAt = prev.CreatedAt
			if err := r.repo.Update(ctx, d); err != nil {
				return result, fmt.Errorf("updating device %q: %w", d.ID, err)
			}
			result.Updated++
		} else {
			d.State = nil
			d.StateUpdatedAt = nil
			if err := r.repo.Create(ctx, d); err != nil {
				return result, fmt.Errorf("creating device %q: %w", d.ID, err)
			}
			result.Added++
		}
		r.store(d)
	}

	for id := range current {
		if _, ok := wanted[id]; ok {
			continue
		}
		if err := r.repo.Delete(ctx, id); err != nil && !errors.Is(err, ErrDeviceNotFound) {
			return result, fmt.Errorf("removing device %q: %w", id, err)
		}
		r.cacheMu.Lock()
		delete(r.cache, id)
		r.cacheMu.Unlock()
		result.Removed++
	}

	r.logger.Info("devices synced",
		"added", result.Added,
		"updated", result.Updated,
		"removed", result.Removed,
	)
	return result, nil
}

func (r *Registry) store(d *Device) {
	r.cacheMu.Lock()
	r.cache[d.ID] = d.DeepCopy()
	r.cacheMu.Unlock()
}

// SetDeviceState records the latest state of a device.
// This is called on every command and decoded IR frame.
func (r *Registry) SetDeviceState(ctx context.Context, id string, state State) error {
	if err := validateMap(state, "state", maxStateKeys); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := r.repo.UpdateState(ctx, id, state, now); err != nil {
		return err
	}

	r.cacheMu.Lock()
	if cached, ok := r.cache[id]; ok {
		cached.State = deepCopyMap(state)
		cached.StateUpdatedAt = &now
	}
	r.cacheMu.Unlock()

	r.logger.Debug("device state updated", "device_id", id)
	return nil
}

// Stats returns registry statistics for monitoring.
type Stats struct {
	TotalDevices  int            `json:"total_devices"`
	ByPlatform    map[string]int `json:"by_platform"`
	WithState     int            `json:"with_state"`
	OldestStateAt *time.Time     `json:"oldest_state_at,omitempty"`
}

// GetStats returns current registry statistics.
func (r *Registry) GetStats() Stats {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	stats := Stats{
		TotalDevices: len(r.cache),
		ByPlatform:   make(map[string]int),
	}
	for _, d := range r.cache {
		stats.ByPlatform[d.Platform]++
		if len(d.State) > 0 {
			stats.WithState++
		}
		if d.StateUpdatedAt != nil && (stats.OldestStateAt == nil || d.StateUpdatedAt.Before(*stats.OldestStateAt)) {
			ts := *d.StateUpdatedAt
			stats.OldestStateAt = &ts
		}
	}
	return stats
}
