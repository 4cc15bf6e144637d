package pipeline_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/praxis/internal/pipeline"
)

type rec struct {
	amt  int64
	cat  string
	typ  string
	date time.Time
	desc string
}

func (r rec) RecordDate() time.Time  { return r.date }
func (r rec) RecordCategory() string { return r.cat }
func (r rec) RecordType() string     { return r.typ }
func (r rec) RecordAmount() int64    { return r.amt }
func (r rec) RecordText() []string   { return []string{r.desc, r.cat} }

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func sample() []rec {
	return []rec{
		{amt: 750, cat: "A", typ: "income", date: day(2024, 7, 15), desc: "Seans - Ayşe Yılmaz"},
		{amt: 250, cat: "B", typ: "income", date: day(2024, 7, 16), desc: "Test - İsmail Kaya"},
		{amt: 1200, cat: "Kira", typ: "expense", date: day(2024, 7, 1), desc: "Temmuz kirası"},
		{amt: 0, cat: "C", typ: "expense", date: day(2024, 7, 20), desc: "İptal"},
		{amt: 300, cat: "A", typ: "income", date: time.Time{}, desc: "tarihsiz kayıt"},
	}
}

func TestFilter_EmptySpecKeepsEverything(t *testing.T) {
	records := sample()

	got := pipeline.Filter(records, pipeline.Spec{})
	assert.Equal(t, records, got)
	assert.True(t, pipeline.Spec{}.IsZero())
}

func TestFilter_ResultIsSubset(t *testing.T) {
	records := sample()
	specs := []pipeline.Spec{
		{Query: "seans"},
		{Category: "a"},
		{Type: "EXPENSE"},
		{Dates: &pipeline.DateRange{From: new(day(2024, 7, 10))}},
		{Query: "kaya", Type: "income", Dates: &pipeline.DateRange{To: new(day(2024, 7, 31))}},
	}

	for _, spec := range specs {
		got := pipeline.Filter(records, spec)
		for _, r := range got {
			assert.Contains(t, records, r)
		}
	}
}

func TestFilter_Criteria(t *testing.T) {
	type testCase struct {
		name     string
		spec     pipeline.Spec
		wantAmts []int64
	}

	tests := []testCase{
		{
			name:     "TextIsCaseInsensitive",
			spec:     pipeline.Spec{Query: "SEANS"},
			wantAmts: []int64{750},
		},
		{
			name:     "TurkishDottedCapital",
			spec:     pipeline.Spec{Query: "ismail"},
			wantAmts: []int64{250},
		},
		{
			name:     "TurkishDotlessCapital",
			spec:     pipeline.Spec{Query: "YILMAZ"},
			wantAmts: []int64{750},
		},
		{
			name:     "AsciiCapitalsMatchDotlessLower",
			spec:     pipeline.Spec{Query: "KIRASI"},
			wantAmts: []int64{1200},
		},
		{
			name:     "TextMatchesCategory",
			spec:     pipeline.Spec{Query: "kira"},
			wantAmts: []int64{1200},
		},
		{
			name:     "CategoryEquals",
			spec:     pipeline.Spec{Category: "A"},
			wantAmts: []int64{750, 300},
		},
		{
			name:     "TypeEquals",
			spec:     pipeline.Spec{Type: "expense"},
			wantAmts: []int64{1200, 0},
		},
		{
			name:     "OpenEndedFrom",
			spec:     pipeline.Spec{Dates: &pipeline.DateRange{From: new(day(2024, 7, 16))}},
			wantAmts: []int64{250, 0},
		},
		{
			name:     "OpenEndedTo",
			spec:     pipeline.Spec{Dates: &pipeline.DateRange{To: new(day(2024, 7, 15))}},
			wantAmts: []int64{750, 1200},
		},
		{
			name: "CriteriaAreAnded",
			spec: pipeline.Spec{
				Category: "A",
				Dates:    &pipeline.DateRange{From: new(day(2024, 7, 1)), To: new(day(2024, 7, 31))},
			},
			wantAmts: []int64{750},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pipeline.Filter(sample(), tt.spec)

			amts := make([]int64, 0, len(got))
			for _, r := range got {
				amts = append(amts, r.amt)
			}

			assert.Equal(t, tt.wantAmts, amts)
		})
	}
}

func TestFilter_DateRangeIsInclusive(t *testing.T) {
	records := []rec{
		{amt: 1, date: time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)},
		{amt: 2, date: time.Date(2024, 7, 20, 23, 59, 59, 0, time.UTC)},
		{amt: 3, date: time.Date(2024, 7, 21, 0, 0, 0, 0, time.UTC)},
		{amt: 4, date: time.Date(2024, 7, 14, 23, 59, 59, 0, time.UTC)},
	}

	got := pipeline.Filter(records, pipeline.Spec{
		Dates: &pipeline.DateRange{From: new(day(2024, 7, 15)), To: new(day(2024, 7, 20))},
	})

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].amt)
	assert.Equal(t, int64(2), got[1].amt)
}

func TestFilter_MissingDateExcludedOnlyWhenBounded(t *testing.T) {
	records := []rec{{amt: 5}}

	assert.Len(t, pipeline.Filter(records, pipeline.Spec{Category: ""}), 1)
	assert.Empty(t, pipeline.Filter(records, pipeline.Spec{
		Dates: &pipeline.DateRange{From: new(day(1900, 1, 1))},
	}))
}

func TestPipeline_WorkedExample(t *testing.T) {
	records := []rec{
		{amt: 750, cat: "A", date: day(2024, 7, 15)},
		{amt: 250, cat: "B", date: day(2024, 7, 16)},
	}

	got := pipeline.Filter(records, pipeline.Spec{
		Dates: &pipeline.DateRange{From: new(day(2024, 7, 15)), To: new(day(2024, 7, 15))},
	})
	require.Len(t, got, 1)
	assert.Equal(t, int64(750), got[0].amt)
	assert.Equal(t, int64(750), pipeline.Total(got))

	buckets := pipeline.Aggregate(got, pipeline.DefaultPalette)
	require.Len(t, buckets, 1)
	assert.Equal(t, "A", buckets[0].Category)
	assert.Equal(t, int64(750), buckets[0].Total)
	assert.InDelta(t, 100.0, buckets[0].Percent, 1e-9)
}

func TestAggregate_DropsZeroGroupsAndSortsDescending(t *testing.T) {
	records := []rec{
		{amt: 100, cat: "Fatura"},
		{amt: 400, cat: "Kira"},
		{amt: 0, cat: "Boş"},
		{amt: 100, cat: "Eğitim"},
		{amt: 50, cat: "Fatura"},
		{amt: 25, cat: "İade"},
		{amt: -25, cat: "İade"},
	}

	buckets := pipeline.Aggregate(records, pipeline.DefaultPalette)
	require.Len(t, buckets, 3)

	assert.Equal(t, "Kira", buckets[0].Category)
	assert.Equal(t, "Fatura", buckets[1].Category)
	assert.Equal(t, 2, buckets[1].Count)
	assert.Equal(t, "Eğitim", buckets[2].Category)

	var sum int64
	for _, b := range buckets {
		sum += b.Total
		assert.NotEmpty(t, b.Color)
	}

	assert.Equal(t, int64(650), sum)
	assert.Equal(t, pipeline.DefaultPalette.Colors["Kira"], buckets[0].Color)
}

func TestAggregate_PercentagesSumToHundred(t *testing.T) {
	records := []rec{
		{amt: 333, cat: "A"},
		{amt: 333, cat: "B"},
		{amt: 334, cat: "C"},
		{amt: 1, cat: "D"},
	}

	buckets := pipeline.Aggregate(records, pipeline.DefaultPalette)

	var total float64
	for _, b := range buckets {
		total += b.Percent
	}

	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestAggregate_EmptyAndZeroTotal(t *testing.T) {
	assert.Empty(t, pipeline.Aggregate([]rec(nil), pipeline.DefaultPalette))

	buckets := pipeline.Aggregate([]rec{{amt: 10, cat: "A"}, {amt: -10, cat: "B"}}, pipeline.DefaultPalette)
	require.Len(t, buckets, 2)

	for _, b := range buckets {
		assert.Zero(t, b.Percent)
		assert.False(t, math.IsNaN(b.Percent))
	}
}

func TestPalette_FallbackIsStable(t *testing.T) {
	p := pipeline.DefaultPalette

	first := p.Color("Süpervizyon")
	assert.Equal(t, first, p.Color("Süpervizyon"))
	assert.Contains(t, p.Fallback, first)
	assert.Equal(t, "#9CA3AF", pipeline.Palette{}.Color("x"))
}

func TestPie_Angles(t *testing.T) {
	buckets := []pipeline.Bucket{
		{Category: "A", Percent: 75},
		{Category: "B", Percent: 25},
	}

	slices := pipeline.Pie(buckets, 100, 100, 80)
	require.Len(t, slices, 2)

	assert.InDelta(t, 0, slices[0].StartAngle, 1e-9)
	assert.InDelta(t, 270, slices[0].EndAngle, 1e-9)
	assert.InDelta(t, 270, slices[1].StartAngle, 1e-9)
	assert.InDelta(t, 360, slices[1].EndAngle, 1e-9)

	// 75% sweeps past a half-turn, so the large-arc flag is set.
	assert.Equal(t, "M 100.00 100.00 L 100.00 20.00 A 80.00 80.00 0 1 1 20.00 100.00 Z", slices[0].Path)
	assert.Contains(t, slices[1].Path, " 0 0 1 ")
}

func TestPie_FullCircleAndEmpty(t *testing.T) {
	full := pipeline.Pie([]pipeline.Bucket{{Category: "A", Percent: 100}}, 50, 50, 40)
	require.Len(t, full, 1)
	assert.Equal(t, 2, strings.Count(full[0].Path, " A "))

	zero := pipeline.Pie([]pipeline.Bucket{{Category: "A"}}, 50, 50, 40)
	assert.Empty(t, zero[0].Path)
}

func TestWeekAndMonthBounds(t *testing.T) {
	// 2024-07-17 is a Wednesday.
	start, end := pipeline.WeekBounds(day(2024, 7, 17))
	assert.Equal(t, day(2024, 7, 15), start)
	assert.Equal(t, day(2024, 7, 21), end)

	// Sunday belongs to the week that started the previous Monday.
	start, _ = pipeline.WeekBounds(day(2024, 7, 21))
	assert.Equal(t, day(2024, 7, 15), start)

	first, last := pipeline.MonthBounds(day(2024, 2, 10))
	assert.Equal(t, day(2024, 2, 1), first)
	assert.Equal(t, day(2024, 2, 29), last)
}

func TestDateIn_KeepsCalendarDay(t *testing.T) {
	honolulu := time.FixedZone("HST", -10*3600)
	got := pipeline.DateIn(day(2024, 7, 15), honolulu)

	assert.Equal(t, 15, got.Day())
	assert.Equal(t, honolulu, got.Location())
	assert.True(t, pipeline.DateIn(time.Time{}, honolulu).IsZero())
}

func TestFold(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{a: "IŞIK", b: "ışık"},
		{a: "İZMİR", b: "izmir"},
		{a: "KIRA", b: "kira"},
		{a: "Çağrı", b: "ÇAĞRI"},
	}

	for _, tt := range tests {
		t.Run(tt.a, func(t *testing.T) {
			assert.Equal(t, pipeline.Fold(tt.a), pipeline.Fold(tt.b))
		})
	}

	assert.NotEqual(t, pipeline.Fold("AYSE"), pipeline.Fold("Ayşe"))
}

