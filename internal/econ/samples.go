package econ

// CycleSamples holds every value collected for each signal in a single batch
type CycleSamples map[Signal][]float64

// Has reports whether at least one value was collected for s
func (c CycleSamples) Has(s Signal) bool {
	return len(c[s]) > 0
}

// Mean returns the arithmetic mean of the values collected for s
func (c CycleSamples) Mean(s Signal) float64 {
	values := c[s]
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// Max returns the largest value collected for s
func (c CycleSamples) Max(s Signal) float64 {
	values := c[s]
	if len(values) == 0 {
		return 0
	}

	maxValue := values[0]
	for _, v := range values[1:] {
		if v > maxValue {
			maxValue = v
		}
	}

	return maxValue
}

// requiredSignals is checked in this order when reporting missing data
var requiredSignals = []Signal{OutdoorAirTemp, ReturnAirTemp, MixedAirTemp, DamperSignal, CoolCall}

// Aggregate sorts the batch values into per-signal buckets using mapping and
// returns the signals that received no value. Fan status counts as present
// when either the status or the speed bucket is filled.
func Aggregate(batch Batch, mapping PointMapping) (CycleSamples, []Signal) {
	lookup := make(map[string]Signal, len(mapping))
	for _, s := range classifyOrder {
		name := mapping[s]
		if name == "" {
			continue
		}
		if _, taken := lookup[name]; !taken {
			lookup[name] = s
		}
	}

	samples := make(CycleSamples, len(classifyOrder))
	for point, value := range batch.Values {
		if value == nil {
			continue
		}
		if s, ok := lookup[point]; ok {
			samples[s] = append(samples[s], *value)
		}
	}

	var missing []Signal
	for _, s := range requiredSignals {
		if !samples.Has(s) {
			missing = append(missing, s)
		}
	}
	if !samples.Has(FanStatus) && !samples.Has(FanSpeed) {
		missing = append(missing, FanStatus)
	}

	return samples, missing
}
