package badge

import "fmt"

const (
	GaugeRadius = 50
	// GaugeCircumference is 2πr rounded the way the web gauge draws it.
	GaugeCircumference = 314.0
)

// Geometry describes the filled arc of the circular score gauge.
type Geometry struct {
	Score         int
	Fraction      float64
	Circumference float64
	DashOffset    float64
}

// Gauge maps a score linearly onto the circle: the filled fraction is score/100.
// Scores are not clamped; callers are expected to pass validated 0-100 values.
func Gauge(score int) Geometry {
	fraction := float64(score) / 100
	return Geometry{
		Score:         score,
		Fraction:      fraction,
		Circumference: GaugeCircumference,
		DashOffset:    GaugeCircumference - GaugeCircumference*fraction,
	}
}

// RenderGaugeSVG generates a self-contained SVG of the score gauge.
func RenderGaugeSVG(score int) string {
	g := Gauge(score)
	hex := ScoreClass(score).Hex()

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="128" height="128" viewBox="0 0 128 128">
  <circle cx="64" cy="64" r="%d" fill="transparent" stroke="#1e293b" stroke-width="10"/>
  <circle cx="64" cy="64" r="%d" fill="transparent" stroke="%s" stroke-width="10"
    stroke-dasharray="%.0f" stroke-dashoffset="%.2f" stroke-linecap="round"
    transform="rotate(-90 64 64)"/>
  <text x="64" y="72" text-anchor="middle" font-family="DejaVu Sans,Verdana,Geneva,sans-serif" font-size="24" font-weight="bold" fill="#ffffff">%d</text>
</svg>`,
		GaugeRadius,
		GaugeRadius,
		hex,
		g.Circumference,
		g.DashOffset,
		score,
	)
}
