package mbishi

import (
	"github.com/nerrad567/gray-logic-irclimate/internal/climate"
	"github.com/nerrad567/gray-logic-irclimate/internal/climateir"
)

// New returns an unconfigured mbishi unit.
func New() *climateir.ClimateIR {
	return climateir.New(Protocol{}, climateir.Options{
		MinTemperature:  MinTemperature,
		MaxTemperature:  MaxTemperature,
		TemperatureStep: 1,
		SupportsDry:     true,
		SupportsFanOnly: true,
		FanModes:        climate.AllFanModes(),
		SwingModes:      climate.AllSwingModes(),
	})
}
