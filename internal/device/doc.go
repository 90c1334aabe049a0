// Package device keeps the catalogue of configured IR climate units.
//
// Each unit declared in the device configuration becomes a Device row in
// SQLite holding its identity, platform, class, validated configuration,
// traits and last known climate state. The Registry caches the catalogue in
// memory for the HTTP API and the bridge, and state changes are appended to
// a state history table.
//
//	repo := device.NewSQLiteRepository(db.DB)
//	registry := device.NewRegistry(repo)
//	registry.SetLogger(log)
//
//	if err := registry.RefreshCache(ctx); err != nil {
//	    return err
//	}
//	result, err := registry.SyncDevices(ctx, configured)
//
//	// From the bridge, after every state change:
//	registry.SetDeviceState(ctx, id, device.StateFromClimate(st))
//
// The Registry is safe for concurrent use; cached devices are deep-copied
// on the way in and out.
package device
