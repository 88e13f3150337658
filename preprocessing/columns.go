// Package preprocessing はレコードテーブルに対する前処理ステージを提供する。
// クリーニング、外れ値除去、カテゴリ符号化、特徴量生成、標準化を含む。
package preprocessing

// 入力レコードの列名
const (
	ColPrice        = "price"
	ColYear         = "year"
	ColManufacturer = "manufacturer"
	ColFuel         = "fuel"
	ColOdometer     = "odometer"
	ColTransmission = "transmission"
	ColDrive        = "drive"
	ColPaintColor   = "paint_color"
	ColType         = "type"
)

// 特徴量生成で追加される列名
const (
	ColCarAge       = "car_age"
	ColPricePerKm   = "price_per_km"
	ColOdometerFuel = "odometer_fuel"
)

// UnknownCategory は欠損したカテゴリ値の代わりに使う番兵値
const UnknownCategory = "unknown"

// RecordColumns はクリーニング後に残す9列（この順序でテーブルに並ぶ）
func RecordColumns() []string {
	return []string{
		ColPrice, ColYear, ColManufacturer, ColFuel, ColOdometer,
		ColTransmission, ColDrive, ColPaintColor, ColType,
	}
}

// NumericColumns は数値として読み込む列
func NumericColumns() []string {
	return []string{ColPrice, ColYear, ColOdometer}
}

// ImputeColumns はKNN補完の対象列
func ImputeColumns() []string {
	return []string{ColYear, ColOdometer}
}

// CategoricalColumns はラベル符号化の対象列
func CategoricalColumns() []string {
	return []string{ColManufacturer, ColFuel, ColTransmission, ColDrive, ColPaintColor, ColType}
}
