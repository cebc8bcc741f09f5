package trajectory

import "math"

// ConsciousnessFrequency combines thought and perception frequencies as
// ωt·ωp/(ωt+ωp). Returns 0 when the sum vanishes.
func ConsciousnessFrequency(omegaThought, omegaPerception float64) float64 {
	sum := omegaThought + omegaPerception
	if sum < 1e-12 {
		return 0
	}
	return omegaThought * omegaPerception / sum
}

// MemoryFromField accumulates |dh/dt|·dt along a sampled field h.
func MemoryFromField(h []float64, dt float64) float64 {
	if len(h) < 2 || dt == 0 {
		return 0
	}
	var m float64
	for i := 1; i < len(h); i++ {
		m += math.Abs((h[i]-h[i-1])/dt) * dt
	}
	return m
}

// MemoryDifferential is |h_now − h_prev| / dt.
func MemoryDifferential(hNow, hPrev, dt float64) float64 {
	if dt == 0 {
		return 0
	}
	return math.Abs((hNow - hPrev) / dt)
}

// RetrieveMemory recovers the field value at t0 from the memory accumulated since.
func RetrieveMemory(mNow, mT0, hNow float64) float64 {
	return hNow - (mNow - mT0)
}

// PredictEmotion extrapolates the field forward by deltaT at rate dmdt.
func PredictEmotion(hNow, dmdt, deltaT float64) float64 {
	return hNow + dmdt*deltaT
}
