package econ_test

import (
	"testing"

	"codeberg.org/mutker/econrcx/internal/econ"
	"github.com/stretchr/testify/assert"
)

func samplesOf(values map[string]float64) econ.CycleSamples {
	samples, _ := econ.Aggregate(batchAt(t0, values), testSettings().Points)
	return samples
}

func TestEconConditionDDB(t *testing.T) {
	s := testSettings()
	d := econ.NewDispatcher(&s, &fakeSensor{})
	values := map[string]float64{
		"OutdoorAirTemperature": 70,
		"ReturnAirTemperature":  72,
		"MixedAirTemperature":   68,
		"OutdoorDamperSignal":   25,
		"CoolCall1":             0,
	}

	r := d.Derive(samplesOf(values), econ.FanState{Status: 1}, t0)

	assert.True(t, r.EconCondition)
	assert.False(t, r.CoolCall)
	assert.InDelta(t, 25.0, r.OAD, 1e-9)
}

func TestEconConditionHighLimit(t *testing.T) {
	s := testSettings()
	s.EconomizerType = econ.EconomizerHL
	d := econ.NewDispatcher(&s, &fakeSensor{})

	r := d.Derive(samplesOf(with(healthyValues(), "OutdoorAirTemperature", 63.5)), econ.FanState{Status: 1}, t0)
	assert.True(t, r.EconCondition)

	r = d.Derive(samplesOf(with(healthyValues(), "OutdoorAirTemperature", 64.5)), econ.FanState{Status: 1}, t0)
	assert.False(t, r.EconCondition)
}

func TestCoolCallAHUUsesMeanThreshold(t *testing.T) {
	s := testSettings()
	s.DeviceType = econ.DeviceAHU
	d := econ.NewDispatcher(&s, &fakeSensor{})

	r := d.Derive(samplesOf(with(healthyValues(), "CoolCall1", 4)), econ.FanState{Status: 1}, t0)
	assert.False(t, r.CoolCall)

	r = d.Derive(samplesOf(with(healthyValues(), "CoolCall1", 40)), econ.FanState{Status: 1}, t0)
	assert.True(t, r.CoolCall)
}

func TestConstantVolumeAssumesFullSpeed(t *testing.T) {
	s := testSettings()
	s.ConstantVolume = true
	d := econ.NewDispatcher(&s, &fakeSensor{})

	r := d.Derive(samplesOf(healthyValues()), econ.FanState{Status: 1}, t0)
	assert.True(t, r.HasFanSpeed)
	assert.InDelta(t, 100.0, r.FanSpeed, 1e-9)

	r = d.Derive(samplesOf(healthyValues()), econ.FanState{Status: 1, Speed: 60, HasSpeed: true}, t0)
	assert.InDelta(t, 60.0, r.FanSpeed, 1e-9)
}
