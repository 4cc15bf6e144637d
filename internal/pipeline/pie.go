package pipeline

import (
	"fmt"
	"math"
)

// Slice is a bucket with its pie-chart geometry. Angles are in degrees,
// clockwise from 12 o'clock.
type Slice struct {
	Bucket
	StartAngle float64
	EndAngle   float64
	Path       string
}

// Pie lays buckets out around a circle of radius r centred at (cx, cy) and
// returns the SVG path of each slice.
func Pie(buckets []Bucket, cx, cy, r float64) []Slice {
	out := make([]Slice, 0, len(buckets))
	angle := 0.0

	for _, b := range buckets {
		sweep := b.Percent / 100 * 360
		s := Slice{
			Bucket:     b,
			StartAngle: angle,
			EndAngle:   angle + sweep,
		}
		s.Path = arcPath(cx, cy, r, s.StartAngle, s.EndAngle)

		out = append(out, s)
		angle += sweep
	}

	return out
}

func polar(cx, cy, r, deg float64) (float64, float64) {
	rad := (deg - 90) * math.Pi / 180
	return cx + r*math.Cos(rad), cy + r*math.Sin(rad)
}

func arcPath(cx, cy, r, start, end float64) string {
	sweep := end - start
	if sweep <= 0 {
		return ""
	}

	// An arc whose endpoints coincide draws nothing, so a full circle is two halves.
	if sweep >= 360-1e-9 {
		return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f Z",
			cx, cy-r, r, r, cx, cy+r, r, r, cx, cy-r)
	}

	x1, y1 := polar(cx, cy, r, start)
	x2, y2 := polar(cx, cy, r, end)

	large := 0
	if sweep > 180 {
		large = 1
	}

	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
		cx, cy, x1, y1, r, r, large, x2, y2)
}
