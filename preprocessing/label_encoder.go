package preprocessing

import (
	"slices"

	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// EncodingTable は列ごとのカテゴリ値と整数コードの対応表。
// コードは辞書順に並べた値のインデックス（0始まり、連続）。
type EncodingTable struct {
	columns []string
	classes map[string][]string
	codes   map[string]map[string]int
}

// Columns は符号化された列を符号化順に返す
func (e *EncodingTable) Columns() []string {
	return slices.Clone(e.columns)
}

// Classes は列の値をコード順に返す
func (e *EncodingTable) Classes(column string) []string {
	return slices.Clone(e.classes[column])
}

// Code は値のコードを返す。未知の値はfalse。
func (e *EncodingTable) Code(column, value string) (int, bool) {
	c, ok := e.codes[column][value]
	return c, ok
}

// Decode はコードから値を返す
func (e *EncodingTable) Decode(column string, code int) (string, bool) {
	cls := e.classes[column]
	if code < 0 || code >= len(cls) {
		return "", false
	}
	return cls[code], true
}

// LabelEncoder はカテゴリ列を列ごとに独立して整数コードへ変換する
type LabelEncoder struct {
	Columns []string
}

// NewLabelEncoder はLabelEncoderを作成する
func NewLabelEncoder(columns ...string) *LabelEncoder {
	return &LabelEncoder{Columns: columns}
}

// FitTransform は対応表を作り、各カテゴリ列を同じ位置の数値列に置き換えたテーブルを返す
func (le *LabelEncoder) FitTransform(t *table.Table) (*table.Table, *EncodingTable, error) {
	enc := &EncodingTable{
		classes: make(map[string][]string, len(le.Columns)),
		codes:   make(map[string]map[string]int, len(le.Columns)),
	}
	out := t
	for _, col := range le.Columns {
		values, err := t.Categorical(col)
		if err != nil {
			return nil, nil, errors.Wrap(err, "encode")
		}

		classes := slices.Clone(values)
		slices.Sort(classes)
		classes = slices.Compact(classes)

		lookup := make(map[string]int, len(classes))
		for i, v := range classes {
			lookup[v] = i
		}

		coded := make([]float64, len(values))
		for i, v := range values {
			coded[i] = float64(lookup[v])
		}

		if out, err = out.WithNumeric(col, coded); err != nil {
			return nil, nil, err
		}
		enc.columns = append(enc.columns, col)
		enc.classes[col] = classes
		enc.codes[col] = lookup
	}

	log.GetLoggerWithName("preprocessing.label_encoder").Debug("categorical columns encoded",
		log.StageKey, "encode",
		log.FeaturesKey, len(le.Columns),
		log.SamplesKey, out.NRows(),
	)
	return out, enc, nil
}
