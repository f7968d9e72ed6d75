package fare

const (
	DefaultBaseFare  = 5.0
	DefaultFarePerKm = 2.0
)

// Calculator prices a trip as a flat base plus a per-kilometer charge.
type Calculator struct {
	BaseFare float64
	PerKm    float64
}

func Default() Calculator {
	return Calculator{BaseFare: DefaultBaseFare, PerKm: DefaultFarePerKm}
}

func (c Calculator) Calculate(distanceKm float64) float64 {
	return c.BaseFare + c.PerKm*distanceKm
}
