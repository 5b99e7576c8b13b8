package main

import (
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/game"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

// pixelsPerMeter is the top-down zoom.
const pixelsPerMeter = 42.0

var (
	whitePixel = func() *ebiten.Image {
		img := ebiten.NewImage(1, 1)
		img.Fill(color.White)
		return img
	}()
	uiFace ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
)

// camera maps the floor plane to the screen. +Z points up the screen and
// the view is centred on the player.
type camera struct {
	cx, cz float64
}

func (c camera) project(p common.Vec3) (float32, float32) {
	x := baseWidth/2 + (p.X-c.cx)*pixelsPerMeter
	y := baseHeight/2 - (p.Z-c.cz)*pixelsPerMeter
	return float32(x), float32(y)
}

type drawItem struct {
	e     ecs.Entity
	r     *component.Renderable
	pos   common.Vec3
	yaw   float64
	scale common.Vec3
	dim   bool
}

func drawWorld(screen *ebiten.Image, g *game.Game) {
	screen.Fill(color.NRGBA{R: 8, G: 8, B: 10, A: 255})
	w := g.World
	pos, yaw := g.PlayerPose()
	cam := camera{cx: pos.X, cz: pos.Z}

	var items []drawItem
	ecs.ForEach(w, component.RenderableComponent.Kind(), func(e ecs.Entity, r *component.Renderable) {
		if r.Mesh == "player" || !entity.ActiveInHierarchy(w, e) {
			return
		}
		p, y := entity.WorldPose(w, e)
		scale := common.One3
		if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok && t.Scale != common.Zero3 {
			scale = t.Scale
		}
		items = append(items, drawItem{e: e, r: r, pos: p, yaw: y, scale: scale, dim: lightsOff(w, e)})
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].r.Layer < items[j].r.Layer })

	for _, it := range items {
		drawItemShape(screen, w, cam, it)
	}
	ecs.ForEach(w, component.LightComponent.Kind(), func(e ecs.Entity, l *component.Light) {
		if !l.On || l.Intensity <= 0 || !entity.ActiveInHierarchy(w, e) {
			return
		}
		p, _ := entity.WorldPose(w, e)
		x, y := cam.project(p)
		glow := color.NRGBA{R: 255, G: 244, B: 214, A: uint8(48 * common.Clamp01(l.Intensity))}
		vector.DrawFilledCircle(screen, x, y, float32(1.5*pixelsPerMeter), glow, true)
	})
	drawPlayer(screen, cam, pos, yaw)
}

// lightsOff reports whether e belongs to a hallway whose lights are off.
func lightsOff(w *ecs.World, e ecs.Entity) bool {
	root := entity.Root(w, e)
	h, ok := ecs.Get(w, root, component.HallwayComponent.Kind())
	return ok && !h.LightsOn
}

func drawItemShape(screen *ebiten.Image, w *ecs.World, cam camera, it drawItem) {
	clr := it.r.Color
	if it.dim {
		clr = shade(clr, 0.3)
	}
	size := it.r.Size.Mul(it.scale)

	switch it.r.Mesh {
	case "hallway", "lift":
		// The root sits on the entry edge; the floor runs along local +Z.
		corners := rectCorners(it.pos, it.yaw, 0, size.Z/2, size.X, size.Z)
		fillPolygon(screen, cam, corners, clr)
		strokePolygon(screen, cam, corners, 2, colornames.Dimgray)
	case "door":
		hinge := it.pos
		tip := hinge.Add(common.V3(size.X, 0, 0).RotateYaw(it.yaw))
		x0, y0 := cam.project(hinge)
		x1, y1 := cam.project(tip)
		vector.StrokeLine(screen, x0, y0, x1, y1, float32(math.Max(3, size.Z*pixelsPerMeter)), clr, true)
		vector.DrawFilledCircle(screen, x0, y0, 3, colornames.Darkgray, true)
		if d, ok := ecs.Get(w, it.e, component.DoorComponent.Kind()); ok && d.Locked {
			mx, my := (x0+x1)/2, (y0+y1)/2
			vector.DrawFilledCircle(screen, mx, my, 4, colornames.Firebrick, true)
		}
	case "cylinder", "disc", "capsule":
		x, y := cam.project(it.pos)
		r := math.Max(size.X, size.Z) / 2 * pixelsPerMeter
		vector.DrawFilledCircle(screen, x, y, float32(math.Max(2, r)), clr, true)
	default:
		// Flat parts (quads, planes) show as thin slabs; give them some depth.
		depth := math.Max(size.Z, 0.08)
		corners := rectCorners(it.pos, it.yaw, 0, 0, size.X, depth)
		fillPolygon(screen, cam, corners, clr)
	}
}

func drawPlayer(screen *ebiten.Image, cam camera, pos common.Vec3, yaw float64) {
	x, y := cam.project(pos)
	vector.DrawFilledCircle(screen, x, y, 0.3*pixelsPerMeter, colornames.Wheat, true)
	fx, fy := cam.project(pos.Add(common.Forward(yaw).Scale(0.6)))
	vector.StrokeLine(screen, x, y, fx, fy, 2, colornames.Wheat, true)
}

// rectCorners returns the footprint of a w×d box centred at (offX, offZ) in
// the frame of (pos, yaw).
func rectCorners(pos common.Vec3, yaw, offX, offZ, w, d float64) []common.Vec3 {
	hw, hd := w/2, d/2
	local := []common.Vec3{
		common.V3(offX-hw, 0, offZ-hd),
		common.V3(offX+hw, 0, offZ-hd),
		common.V3(offX+hw, 0, offZ+hd),
		common.V3(offX-hw, 0, offZ+hd),
	}
	for i, p := range local {
		local[i] = p.RotateYaw(yaw).Add(pos)
	}
	return local
}

func fillPolygon(screen *ebiten.Image, cam camera, pts []common.Vec3, clr color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	var path vector.Path
	x, y := cam.project(pts[0])
	path.MoveTo(x, y)
	for _, p := range pts[1:] {
		x, y = cam.project(p)
		path.LineTo(x, y)
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	r, g, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 0, 0
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = r*a, g*a, b*a, a
	}
	screen.DrawTriangles(vs, is, whitePixel, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func strokePolygon(screen *ebiten.Image, cam camera, pts []common.Vec3, width float32, clr color.Color) {
	for i := range pts {
		x0, y0 := cam.project(pts[i])
		x1, y1 := cam.project(pts[(i+1)%len(pts)])
		vector.StrokeLine(screen, x0, y0, x1, y1, width, clr, true)
	}
}

func shade(c color.NRGBA, f float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: c.A,
	}
}

func drawCenteredText(screen *ebiten.Image, msg string, y float64) {
	w, _ := ebtext.Measure(msg, uiFace, 0)
	op := &ebtext.DrawOptions{}
	op.GeoM.Translate((baseWidth-w)/2, y)
	op.ColorScale.ScaleWithColor(colornames.Lightgray)
	ebtext.Draw(screen, msg, uiFace, op)
}
