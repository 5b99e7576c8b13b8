package component

import (
	"image/color"

	"github.com/milk9111/hallways/common"
)

// Renderable describes how a host should draw an entity. The core never
// draws; it only mutates these values.
type Renderable struct {
	Mesh  string
	Size  common.Vec3
	Color color.NRGBA
	Layer int
}

var RenderableComponent = NewComponent[Renderable]()
