package dataset

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/preprocessing"
)

var (
	syntheticManufacturers = []string{"bmw", "chevrolet", "ford", "honda", "toyota"}
	syntheticFuels         = []string{"diesel", "electric", "gas", "hybrid"}
	syntheticTransmissions = []string{"automatic", "manual", "other"}
	syntheticDrives        = []string{"4wd", "fwd", "rwd"}
	syntheticColors        = []string{"black", "blue", "red", "silver", "white"}
	syntheticTypes         = []string{"pickup", "sedan", "SUV", "truck"}
)

// Synthetic generates n listings shaped like the real data: prices driven by
// age, mileage and make, with about 5% missing year and odometer cells, a few
// missing categories, some prices outside the kept range and a handful of
// extreme odometer readings. Equal seeds give equal tables.
func Synthetic(n int, seed uint64) *table.Table {
	rng := rand.New(rand.NewPCG(seed, 0xda7a))

	price := make([]float64, n)
	year := make([]float64, n)
	odometer := make([]float64, n)
	manufacturer := make([]string, n)
	fuel := make([]string, n)
	transmission := make([]string, n)
	drive := make([]string, n)
	color := make([]string, n)
	typ := make([]string, n)

	for i := 0; i < n; i++ {
		y := 1998 + rng.IntN(25)
		age := float64(2023 - y)
		odo := age*11000 + rng.Float64()*20000
		m := rng.IntN(len(syntheticManufacturers))

		if rng.IntN(80) == 0 {
			odo *= 40
		}
		wear := math.Max(0.3, 1-odo/600000)
		base := 42000*math.Exp(-0.09*age)*wear + 2500*float64(m)
		p := base * (1 + 0.08*rng.NormFloat64())
		switch rng.IntN(40) {
		case 0:
			p = 1 // junk listing
		case 1:
			p = 150000 + rng.Float64()*1e5
		}

		price[i] = math.Round(p)
		year[i] = float64(y)
		odometer[i] = math.Round(odo)
		if rng.IntN(20) == 0 {
			year[i] = math.NaN()
		}
		if rng.IntN(20) == 0 {
			odometer[i] = math.NaN()
		}

		manufacturer[i] = syntheticManufacturers[m]
		fuel[i] = pick(rng, syntheticFuels)
		transmission[i] = pick(rng, syntheticTransmissions)
		drive[i] = pick(rng, syntheticDrives)
		color[i] = pick(rng, syntheticColors)
		typ[i] = pick(rng, syntheticTypes)
	}

	t, err := table.New(
		table.NumericColumn(preprocessing.ColPrice, price),
		table.NumericColumn(preprocessing.ColYear, year),
		table.CategoricalColumn(preprocessing.ColManufacturer, manufacturer),
		table.CategoricalColumn(preprocessing.ColFuel, fuel),
		table.NumericColumn(preprocessing.ColOdometer, odometer),
		table.CategoricalColumn(preprocessing.ColTransmission, transmission),
		table.CategoricalColumn(preprocessing.ColDrive, drive),
		table.CategoricalColumn(preprocessing.ColPaintColor, color),
		table.CategoricalColumn(preprocessing.ColType, typ),
	)
	if err != nil {
		// columns are built with equal lengths and distinct names
		panic(err)
	}
	return t
}

func pick(rng *rand.Rand, values []string) string {
	if rng.IntN(25) == 0 {
		return preprocessing.UnknownCategory
	}
	return values[rng.IntN(len(values))]
}
