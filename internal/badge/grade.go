package badge

import "auditor/internal/audit"

// Class is the presentation of one risk tier. The same Class backs the web
// badge, the terminal badge and the exported reports.
type Class struct {
	Level audit.Level
	// Name is the English tier name ("critical" ... "unknown").
	Name string
	// CSS is the utility class pair used by the web views.
	CSS string
	// Color is the shields.io color name.
	Color string
	// Hex is the background color; Foreground the matching text color.
	Hex        string
	Foreground string
}

var classes = map[audit.Level]Class{
	audit.LevelCritical: {Level: audit.LevelCritical, Name: "critical", CSS: "bg-red-600 text-white", Color: "red", Hex: "#dc2626", Foreground: "#ffffff"},
	audit.LevelHigh:     {Level: audit.LevelHigh, Name: "high", CSS: "bg-orange-500 text-white", Color: "orange", Hex: "#f97316", Foreground: "#ffffff"},
	audit.LevelMedium:   {Level: audit.LevelMedium, Name: "medium", CSS: "bg-yellow-500 text-black", Color: "yellow", Hex: "#eab308", Foreground: "#000000"},
	audit.LevelLow:      {Level: audit.LevelLow, Name: "low", CSS: "bg-green-600 text-white", Color: "green", Hex: "#16a34a", Foreground: "#ffffff"},
}

var unknownClass = Class{Level: audit.LevelUnknown, Name: "unknown", CSS: "bg-gray-500", Color: "lightgrey", Hex: "#6b7280", Foreground: "#ffffff"}

// LevelClass maps a severity or risk-level label to its presentation.
// Unmatched labels get the neutral class; it never fails.
func LevelClass(label string) Class {
	if c, ok := classes[audit.ParseLevel(label)]; ok {
		return c
	}
	return unknownClass
}

// Alert is the score band used to color the gauge.
type Alert string

const (
	AlertHigh    Alert = "high-alert"
	AlertCaution Alert = "caution"
	AlertNominal Alert = "nominal"
)

// ScoreClass bands a 0-100 risk score: above 70 is high-alert, above 40 caution.
func ScoreClass(score int) Alert {
	switch {
	case score > 70:
		return AlertHigh
	case score > 40:
		return AlertCaution
	default:
		return AlertNominal
	}
}

func (a Alert) CSS() string {
	switch a {
	case AlertHigh:
		return "text-red-600"
	case AlertCaution:
		return "text-yellow-500"
	default:
		return "text-green-500"
	}
}

func (a Alert) Hex() string {
	switch a {
	case AlertHigh:
		return "#dc2626"
	case AlertCaution:
		return "#eab308"
	default:
		return "#22c55e"
	}
}
