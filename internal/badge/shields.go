package badge

import (
	"encoding/json"
	"fmt"
)

type shieldsEndpoint struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
	Color         string `json:"color"`
}

// ShieldsJSON returns a shields.io endpoint JSON string for a risk level and score.
// Only the level and score are exposed, never report text.
func ShieldsJSON(label, level string, score int) string {
	c := LevelClass(level)
	data := shieldsEndpoint{
		SchemaVersion: 1,
		Label:         label,
		Message:       fmt.Sprintf("%s %d/100", c.Name, score),
		Color:         c.Color,
	}
	b, _ := json.MarshalIndent(data, "", "  ")
	return string(b)
}
