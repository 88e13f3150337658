package preprocessing

import (
	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
)

// FeatureEngineer は派生列 car_age, price_per_km, odometer_fuel を末尾に追加する。
// 既存の列は変更しない。fuel は符号化済みである必要がある。
type FeatureEngineer struct {
	CurrentYear int
}

// NewFeatureEngineer はFeatureEngineerを作成する
func NewFeatureEngineer(currentYear int) *FeatureEngineer {
	return &FeatureEngineer{CurrentYear: currentYear}
}

// Transform は派生列を追加したテーブルを返す
func (fe *FeatureEngineer) Transform(t *table.Table) (*table.Table, error) {
	year, err := t.Numeric(ColYear)
	if err != nil {
		return nil, errors.Wrap(err, "features")
	}
	price, err := t.Numeric(ColPrice)
	if err != nil {
		return nil, errors.Wrap(err, "features")
	}
	odo, err := t.Numeric(ColOdometer)
	if err != nil {
		return nil, errors.Wrap(err, "features")
	}
	fuel, err := t.Numeric(ColFuel)
	if err != nil {
		return nil, errors.Wrap(err, "features: fuel must be label-encoded first")
	}

	n := t.NRows()
	carAge := make([]float64, n)
	perKm := make([]float64, n)
	odoFuel := make([]float64, n)
	cy := float64(fe.CurrentYear)
	for i := 0; i < n; i++ {
		carAge[i] = cy - year[i]
		// +1 で走行距離ゼロの除算を避ける
		perKm[i] = price[i] / (odo[i] + 1)
		odoFuel[i] = odo[i] * fuel[i]
	}

	out := t
	for _, c := range []table.Column{
		table.NumericColumn(ColCarAge, carAge),
		table.NumericColumn(ColPricePerKm, perKm),
		table.NumericColumn(ColOdometerFuel, odoFuel),
	} {
		if out, err = out.WithColumn(c); err != nil {
			return nil, err
		}
	}
	return out, nil
}
