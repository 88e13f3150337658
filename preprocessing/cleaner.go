package preprocessing

import (
	"math"
	"slices"

	"github.com/YuminosukeSato/autoprice/core/random"
	"github.com/YuminosukeSato/autoprice/core/table"
	"github.com/YuminosukeSato/autoprice/pkg/errors"
	"github.com/YuminosukeSato/autoprice/pkg/log"
)

// Cleaner は価格範囲でレコードを絞り込み、9列に射影し、シード付きでサブサンプリングする
type Cleaner struct {
	// PriceMin, PriceMax は開区間 (PriceMin, PriceMax) で価格を残す
	PriceMin float64
	PriceMax float64

	// Fraction は残す行の割合 (0, 1]
	Fraction float64

	// Columns は射影する列（デフォルトはRecordColumns）
	Columns []string

	Seed uint64
}

// CleanerOption はCleanerの設定関数
type CleanerOption func(*Cleaner)

// WithPriceRange は価格の下限・上限（いずれも含まない）を設定する
func WithPriceRange(lo, hi float64) CleanerOption {
	return func(c *Cleaner) {
		c.PriceMin = lo
		c.PriceMax = hi
	}
}

// WithSampleFraction はサブサンプリングの割合を設定する
func WithSampleFraction(f float64) CleanerOption {
	return func(c *Cleaner) { c.Fraction = f }
}

// WithCleanerSeed は乱数シードを設定する
func WithCleanerSeed(seed uint64) CleanerOption {
	return func(c *Cleaner) { c.Seed = seed }
}

// NewCleaner はデフォルト設定 (500, 80000), 0.3, seed 42 のCleanerを作成する
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		PriceMin: 500,
		PriceMax: 80000,
		Fraction: 0.3,
		Columns:  RecordColumns(),
		Seed:     42,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transform はクリーニングを実行する。空の結果はこのステージでは正常な出力。
func (c *Cleaner) Transform(t *table.Table) (*table.Table, error) {
	if c.Fraction <= 0 || c.Fraction > 1 {
		return nil, errors.NewValidationError("sample_fraction", "must be in (0, 1]", c.Fraction)
	}
	price, err := t.Numeric(ColPrice)
	if err != nil {
		return nil, errors.Wrap(err, "clean")
	}

	// NaNはどちらの比較も偽になるので落ちる
	filtered := t.Filter(func(r int) bool {
		return price[r] > c.PriceMin && price[r] < c.PriceMax
	})

	projected, err := filtered.Select(c.Columns...)
	if err != nil {
		return nil, errors.NewDataError("clean", missingColumn(filtered, c.Columns), "required column not present")
	}

	out := c.subsample(projected)

	log.GetLoggerWithName("preprocessing.cleaner").Info("cleaning completed",
		log.StageKey, "clean",
		"rows_in", t.NRows(),
		"rows_in_range", filtered.NRows(),
		log.SamplesKey, out.NRows(),
		log.RandomSeedKey, c.Seed,
	)
	return out, nil
}

// subsample は round(Fraction*n) 行を非復元抽出し、元の行順を保つ
func (c *Cleaner) subsample(t *table.Table) *table.Table {
	n := t.NRows()
	if c.Fraction == 1 || n == 0 {
		return t
	}
	k := int(math.Round(c.Fraction * float64(n)))

	rng := random.New(c.Seed, random.StreamSample)
	idx := rng.Perm(n)[:k]
	slices.Sort(idx)
	return t.Take(idx)
}

func missingColumn(t *table.Table, names []string) string {
	for _, n := range names {
		if !t.Has(n) {
			return n
		}
	}
	return ""
}
