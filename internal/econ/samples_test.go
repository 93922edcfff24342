package econ_test

import (
	"testing"

	"codeberg.org/mutker/econrcx/internal/econ"
	"github.com/stretchr/testify/assert"
)

func TestAggregateAllPresent(t *testing.T) {
	s := testSettings()
	values := with(healthyValues(), "Unrelated", 3)

	samples, missing := econ.Aggregate(batchAt(t0, values), s.Points)

	assert.Empty(t, missing)
	assert.Equal(t, []float64{60}, samples[econ.OutdoorAirTemp])
	assert.Equal(t, []float64{1}, samples[econ.FanStatus])
	assert.False(t, samples.Has(econ.FanSpeed))
}

func TestAggregateSkipsNullValues(t *testing.T) {
	s := testSettings()
	b := batchAt(t0, healthyValues())
	b.Values["OutdoorAirTemperature"] = nil

	samples, missing := econ.Aggregate(b, s.Points)

	assert.Equal(t, []econ.Signal{econ.OutdoorAirTemp}, missing)
	assert.False(t, samples.Has(econ.OutdoorAirTemp))
}

func TestAggregateFanEitherPointSuffices(t *testing.T) {
	s := testSettings()

	values := with(without(healthyValues(), "SupplyFanStatus"), "SupplyFanSpeed", 40)
	_, missing := econ.Aggregate(batchAt(t0, values), s.Points)
	assert.Empty(t, missing)

	_, missing = econ.Aggregate(batchAt(t0, without(healthyValues(), "SupplyFanStatus")), s.Points)
	assert.Equal(t, []econ.Signal{econ.FanStatus}, missing)
}

func TestAggregateReportsEachMissingSignal(t *testing.T) {
	s := testSettings()
	values := without(without(healthyValues(), "CoolCall1"), "ReturnAirTemperature")

	_, missing := econ.Aggregate(batchAt(t0, values), s.Points)

	assert.Equal(t, []econ.Signal{econ.ReturnAirTemp, econ.CoolCall}, missing)
}

func TestCycleSamplesReductions(t *testing.T) {
	c := econ.CycleSamples{econ.MixedAirTemp: {68, 70, 72}}

	assert.InDelta(t, 70.0, c.Mean(econ.MixedAirTemp), 1e-9)
	assert.InDelta(t, 72.0, c.Max(econ.MixedAirTemp), 1e-9)
	assert.Zero(t, c.Mean(econ.OutdoorAirTemp))
}

func TestParseSignal(t *testing.T) {
	s, ok := econ.ParseSignal("Outdoor_Air_Temperature")
	assert.True(t, ok)
	assert.Equal(t, econ.OutdoorAirTemp, s)

	_, ok = econ.ParseSignal("zone_temperature")
	assert.False(t, ok)
}
