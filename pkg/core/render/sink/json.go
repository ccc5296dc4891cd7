package sink

import (
	"encoding/json"

	"github.com/matzehuels/fishbone/pkg/core/render/scene"
)

// RenderJSON encodes s as indented JSON.
func RenderJSON(s scene.Scene) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
