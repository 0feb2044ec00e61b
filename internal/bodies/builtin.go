package bodies

import "time"

// BuiltinDefinitions is the default solar system. Moons follow their parents.
var BuiltinDefinitions = []Definition{
	{ID: "sun", Name: "Sun", Type: "star", MassKg: 1.989e30, RadiusKm: 696000},
	{ID: "mercury", Name: "Mercury", Type: "planet", MassKg: 3.301e23, RadiusKm: 2439.7, SemiMajorAU: 0.387, PeriodDays: 87.97},
	{ID: "venus", Name: "Venus", Type: "planet", MassKg: 4.867e24, RadiusKm: 6051.8, SemiMajorAU: 0.723, PeriodDays: 224.70},
	{ID: "earth", Name: "Earth", Type: "planet", MassKg: 5.972e24, RadiusKm: 6371, SemiMajorAU: 1.000, PeriodDays: 365.25},
	{ID: "moon", Name: "Moon", Type: "moon", MassKg: 7.342e22, RadiusKm: 1737.4, Parent: "earth", OrbitKm: 384400, PeriodDays: 27.32},
	{ID: "mars", Name: "Mars", Type: "planet", MassKg: 6.417e23, RadiusKm: 3389.5, SemiMajorAU: 1.524, PeriodDays: 686.98},
	{ID: "phobos", Name: "Phobos", Type: "moon", MassKg: 1.0659e16, RadiusKm: 11.27, Parent: "mars", OrbitKm: 9376, PeriodDays: 0.319},
	{ID: "deimos", Name: "Deimos", Type: "moon", MassKg: 1.4762e15, RadiusKm: 6.2, Parent: "mars", OrbitKm: 23463, PeriodDays: 1.263},
	{ID: "ceres", Name: "Ceres", Type: "dwarf", MassKg: 9.39e20, RadiusKm: 469.7, SemiMajorAU: 2.767, PeriodDays: 1680},
	{ID: "vesta", Name: "Vesta", Type: "asteroid", MassKg: 2.59e20, RadiusKm: 262.7, SemiMajorAU: 2.362, PeriodDays: 1325},
	{ID: "jupiter", Name: "Jupiter", Type: "planet", MassKg: 1.898e27, RadiusKm: 69911, SemiMajorAU: 5.203, PeriodDays: 4332.59},
	{ID: "europa", Name: "Europa", Type: "moon", MassKg: 4.800e22, RadiusKm: 1560.8, Parent: "jupiter", OrbitKm: 671100, PeriodDays: 3.551},
	{ID: "saturn", Name: "Saturn", Type: "planet", MassKg: 5.683e26, RadiusKm: 58232, SemiMajorAU: 9.537, PeriodDays: 10759.22},
	{ID: "titan", Name: "Titan", Type: "moon", MassKg: 1.345e23, RadiusKm: 2574.7, Parent: "saturn", OrbitKm: 1221870, PeriodDays: 15.945},
	{ID: "uranus", Name: "Uranus", Type: "planet", MassKg: 8.681e25, RadiusKm: 25362, SemiMajorAU: 19.19, PeriodDays: 30688.5},
	{ID: "neptune", Name: "Neptune", Type: "planet", MassKg: 1.024e26, RadiusKm: 24622, SemiMajorAU: 30.07, PeriodDays: 60182},
}

// Builtin lays out the built-in solar system at the given epoch.
func Builtin(epoch time.Time) *Catalog {
	c, err := Build(BuiltinDefinitions, epoch)
	if err != nil {
		// The built-in table is static; a failure here is a programming error.
		panic(err)
	}
	return c
}

// Default returns the built-in catalog at DefaultEpoch.
func Default() *Catalog {
	return Builtin(DefaultEpoch)
}
