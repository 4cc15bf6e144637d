package pipeline

import (
	"cmp"
	"hash/fnv"
	"slices"
	"strings"
)

// Bucket is the aggregated amount of all records sharing a category label.
type Bucket struct {
	Category string
	Color    string
	Total    int64
	Count    int
	Percent  float64
}

// Palette assigns fixed display colours to category labels.
type Palette struct {
	Colors   map[string]string
	Fallback []string
}

// DefaultPalette covers the practice's standard income and expense categories.
var DefaultPalette = Palette{
	Colors: map[string]string{
		"Seans Ücreti": "#4F46E5",
		"Test Ücreti":  "#0EA5E9",
		"Danışmanlık":  "#10B981",
		"Eğitim":       "#F59E0B",
		"Kira":         "#EF4444",
		"Maaş":         "#8B5CF6",
		"Fatura":       "#F97316",
		"Vergi":        "#64748B",
		"Ofis Malzeme": "#14B8A6",
		"Reklam":       "#EC4899",
		"Diğer":        "#9CA3AF",
	},
	Fallback: []string{"#2563EB", "#16A34A", "#DC2626", "#CA8A04", "#9333EA", "#0891B2", "#DB2777", "#4B5563"},
}

// Color returns the colour for category. Unknown labels hash into the fallback
// list so the same label always gets the same colour.
func (p Palette) Color(category string) string {
	if c, ok := p.Colors[category]; ok {
		return c
	}

	if len(p.Fallback) == 0 {
		return "#9CA3AF"
	}

	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(category)))

	return p.Fallback[h.Sum32()%uint32(len(p.Fallback))]
}

// Aggregate sums record amounts per category. Zero-total groups are dropped and
// the rest are sorted by total, largest first. Percent is the share of the
// remaining grand total and is 0 everywhere when that total is 0.
func Aggregate[R Record](records []R, palette Palette) []Bucket {
	index := make(map[string]int)

	var buckets []Bucket

	for _, r := range records {
		cat := r.RecordCategory()

		i, ok := index[cat]
		if !ok {
			i = len(buckets)
			index[cat] = i
			buckets = append(buckets, Bucket{Category: cat, Color: palette.Color(cat)})
		}

		buckets[i].Total += r.RecordAmount()
		buckets[i].Count++
	}

	kept := make([]Bucket, 0, len(buckets))

	var sum int64

	for _, b := range buckets {
		if b.Total == 0 {
			continue
		}

		kept = append(kept, b)
		sum += b.Total
	}

	slices.SortStableFunc(kept, func(a, b Bucket) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}

		return strings.Compare(a.Category, b.Category)
	})

	if sum == 0 {
		return kept
	}

	for i := range kept {
		kept[i].Percent = float64(kept[i].Total) / float64(sum) * 100
	}

	return kept
}
