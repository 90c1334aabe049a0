package device

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-irclimate/migrations"
)

// setupTestDB opens a migrated database in a temp directory.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "irclimate.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db.DB
}

func testTraits() climate.Traits {
	return climate.Traits{
		MinTemperature:  16,
		MaxTemperature:  31,
		TemperatureStep: 1,
		Modes:           []climate.Mode{climate.ModeOff, climate.ModeCool, climate.ModeHeat},
		FanModes:        []climate.FanMode{climate.FanAuto, climate.FanLow},
		SwingModes:      []climate.SwingMode{climate.SwingOff, climate.SwingBoth},
	}
}

func testDevice(id, name string) *Device {
	return &Device{
		ID:       id,
		Name:     name,
		Slug:     GenerateSlug(name),
		Platform: "mbishi",
		Class:    "esphome::mbishi::MbishiClimate",
		Config:   Config{"id": id, "name": name, "supports_heat": true},
		Traits:   testTraits(),
	}
}

func coolState() State {
	return State{
		"mode":               "cool",
		"target_temperature": 24.0,
		"fan_mode":           "auto",
		"swing_mode":         "off",
	}
}
