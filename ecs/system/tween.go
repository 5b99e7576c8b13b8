package system

import (
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
)

// TweenSystem advances Tween components and writes the eased value into the
// entity's Transform. Finished tweens are removed.
type TweenSystem struct{}

func NewTweenSystem() *TweenSystem { return &TweenSystem{} }

func (s *TweenSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	dt := w.Delta()
	ecs.ForEach2(w, component.TweenComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, tw *component.Tween, t *component.Transform) {
		tw.Elapsed += dt
		progress := 1.0
		if tw.Duration > 0 {
			progress = tw.Elapsed / tw.Duration
		}
		value := common.Lerp3(tw.From, tw.To, tw.Curve.Eval(progress))
		switch tw.Property {
		case component.TweenRotation:
			t.Rotation = value
		case component.TweenPosition:
			t.Position = value
		}
		if progress >= 1 {
			ecs.Remove(w, e, component.TweenComponent.Kind())
		}
	})
}

// StartTween replaces any running tween on e. A zero duration snaps on the
// next update.
func StartTween(w *ecs.World, e ecs.Entity, prop component.TweenProperty, to common.Vec3, duration float64, curve common.Curve) bool {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return false
	}
	from := t.Position
	if prop == component.TweenRotation {
		from = t.Rotation
	}
	return ecs.Add(w, e, component.TweenComponent.Kind(), &component.Tween{
		Property: prop,
		From:     from,
		To:       to,
		Duration: duration,
		Curve:    curve,
	}) == nil
}

func Tweening(w *ecs.World, e ecs.Entity) bool {
	return ecs.Has(w, e, component.TweenComponent.Kind())
}

func StopTween(w *ecs.World, e ecs.Entity) {
	ecs.Remove(w, e, component.TweenComponent.Kind())
}
