package sentropy

import "math"

// #region navigate
// Navigate walks from start toward target in steps of at most stepSize,
// returning the visited path including start. The walk stops once the
// distance falls below Epsilon or after maxSteps moves.
func Navigate(start, target Coord, stepSize float64, maxSteps int) []Coord {
	if maxSteps < 0 {
		maxSteps = 0
	}
	path := make([]Coord, 1, maxSteps+1)
	path[0] = start
	pos := start
	for i := 0; i < maxSteps; i++ {
		dist := pos.Distance(target)
		if dist < Epsilon {
			break
		}
		g := pos.GradientToward(target)
		step := math.Min(stepSize, dist)
		pos = pos.Update(g[0]*step, g[1]*step, g[2]*step)
		path = append(path, pos)
	}
	return path
}

// #endregion navigate

// #region gradient
// Gradient is the one-sided finite-difference gradient of field at s.
// A forward difference is used unless it would leave the cube, in which case
// a backward difference is taken.
func Gradient(field Field, s Coord, eps float64) [3]float64 {
	f0 := field(s)
	var g [3]float64
	base := s.Array()
	for axis := 0; axis < 3; axis++ {
		shifted := base
		switch {
		case base[axis]+eps <= 1:
			shifted[axis] += eps
			g[axis] = (field(fromRaw(shifted)) - f0) / eps
		case base[axis]-eps >= 0:
			shifted[axis] -= eps
			g[axis] = (f0 - field(fromRaw(shifted))) / eps
		}
	}
	return g
}

func fromRaw(v [3]float64) Coord {
	return Coord{Sk: v[0], St: v[1], Se: v[2]}
}

// #endregion gradient

// #region axis-updates
// UpdateKnowledge lowers sk in proportion to the information gained.
func UpdateKnowledge(s Coord, informationGain float64) Coord {
	return s.Update(-informationGain*s.Sk, 0, 0)
}

// UpdateTemporal raises st toward 1 by the ratio tauCircuit/tauMax.
func UpdateTemporal(s Coord, tauCircuit, tauMax float64) Coord {
	return s.Update(0, (tauCircuit/tauMax)*(1-s.St), 0)
}

// UpdateEvolution raises se toward 1 by a trajectory step over dt.
func UpdateEvolution(s Coord, trajectoryStep, dt float64) Coord {
	return s.Update(0, 0, trajectoryStep*dt*(1-s.Se))
}

// #endregion axis-updates

// #region fields
// EntropyField is the magnitude of the coordinate.
func EntropyField(s Coord) float64 {
	return s.Magnitude()
}

// FreeEnergyField returns U − T·|s|.
func FreeEnergyField(s Coord, temperature, internalEnergy float64) float64 {
	return internalEnergy - temperature*s.Magnitude()
}

// MinimizeFreeEnergy descends the free-energy field with unit internal energy,
// stopping when a step moves less than Epsilon.
func MinimizeFreeEnergy(initial Coord, temperature float64, maxIterations int, learningRate float64) Coord {
	field := func(c Coord) float64 { return FreeEnergyField(c, temperature, 1) }
	s := initial
	for i := 0; i < maxIterations; i++ {
		g := Gradient(field, s, 1e-6)
		next := s.Update(-learningRate*g[0], -learningRate*g[1], -learningRate*g[2])
		if s.Distance(next) < Epsilon {
			break
		}
		s = next
	}
	return s
}

// #endregion fields
