package lights

// PowerLightSampler selects lights with probability proportional to their
// emitted power, so bright lights receive more samples
type PowerLightSampler struct {
	lights        []Light
	probabilities []float64
	cumulative    []float64
}

// NewPowerLightSampler builds the selection distribution from the lights'
// power estimates. Lights with zero power fall back to a uniform share.
func NewPowerLightSampler(lights []Light) *PowerLightSampler {
	probabilities := make([]float64, len(lights))
	totalPower := 0.0
	for i, light := range lights {
		probabilities[i] = light.Power()
		totalPower += probabilities[i]
	}

	if totalPower > 0 {
		for i := range probabilities {
			probabilities[i] /= totalPower
		}
	} else if len(lights) > 0 {
		uniform := 1.0 / float64(len(lights))
		for i := range probabilities {
			probabilities[i] = uniform
		}
	}

	cumulative := make([]float64, len(probabilities))
	sum := 0.0
	for i, p := range probabilities {
		sum += p
		cumulative[i] = sum
	}

	return &PowerLightSampler{
		lights:        lights,
		probabilities: probabilities,
		cumulative:    cumulative,
	}
}

// SampleLight selects a light by inverting the cumulative distribution
func (pls *PowerLightSampler) SampleLight(u float64) (Light, float64, int) {
	if len(pls.lights) == 0 {
		return nil, 0.0, -1
	}
	for i, c := range pls.cumulative {
		if u <= c {
			return pls.lights[i], pls.probabilities[i], i
		}
	}
	// u landed past the accumulated rounding error, use the last light
	last := len(pls.lights) - 1
	return pls.lights[last], pls.probabilities[last], last
}

// LightProbability returns the selection probability of the given light
func (pls *PowerLightSampler) LightProbability(lightIndex int) float64 {
	if lightIndex < 0 || lightIndex >= len(pls.probabilities) {
		return 0.0
	}
	return pls.probabilities[lightIndex]
}

// LightCount returns the number of selectable lights
func (pls *PowerLightSampler) LightCount() int {
	return len(pls.lights)
}
