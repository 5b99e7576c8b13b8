package system

import (
	"log"
	"math/rand"

	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/host"
	"github.com/milk9111/hallways/prefabs"
)

// AnomalySystem applies and reverts the anomaly of a hallway. Transform-like
// kinds are snapshotted before mutation; audio kinds are armed on apply and
// only sound once the hallway becomes current (see Activate).
type AnomalySystem struct {
	Audio     host.Audio
	Rand      *rand.Rand
	Swaps     map[string]prefabs.PartSpec
	WeirdLoop string
}

func NewAnomalySystem(audio host.Audio, rng *rand.Rand, swaps map[string]prefabs.PartSpec) *AnomalySystem {
	return &AnomalySystem{Audio: audio, Rand: rng, Swaps: swaps}
}

// ApplyChange picks one non-nil candidate uniformly and applies it. It is a
// no-op when already applied and fails without side effects when nothing
// can be applied.
func (s *AnomalySystem) ApplyChange(w *ecs.World, e ecs.Entity) bool {
	a, ok := ecs.Get(w, e, component.AnomalyComponent.Kind())
	if !ok {
		log.Printf("anomaly: %v has no anomaly component", e)
		return false
	}
	if a.Applied {
		return false
	}

	choices := make([]*component.Change, 0, len(a.Candidates))
	for _, c := range a.Candidates {
		if c != nil {
			choices = append(choices, c)
		}
	}
	if len(choices) == 0 {
		log.Printf("anomaly: %v has no candidates", e)
		return false
	}
	c := choices[s.intn(len(choices))]

	if !c.Kind.IsAudio() {
		t, ok := ecs.Get(w, c.Target, component.TransformComponent.Kind())
		if !ok {
			log.Printf("anomaly: %v: %s target %v is gone", e, c.Kind, c.Target)
			return false
		}
		snap := component.ChangeSnapshot{
			Position: t.Position,
			Rotation: t.Rotation,
			Scale:    t.Scale,
		}
		if act, ok := ecs.Get(w, c.Target, component.ActiveComponent.Kind()); ok {
			snap.HadActive = true
			snap.Active = act.Enabled
		}
		r, hasRenderable := ecs.Get(w, c.Target, component.RenderableComponent.Kind())
		if hasRenderable {
			snap.Color = r.Color
		}

		switch c.Kind {
		case component.ChangeVisibilityOn:
			entity.SetActive(w, c.Target, true)
		case component.ChangeVisibilityOff:
			entity.SetActive(w, c.Target, false)
		case component.ChangeColor:
			if !hasRenderable {
				log.Printf("anomaly: %v: color target %v is not renderable", e, c.Target)
				return false
			}
			r.Color = c.Color
		case component.ChangePositionOffset:
			t.Position = t.Position.Add(c.Offset)
		case component.ChangeRotationOffset:
			t.Rotation = t.Rotation.Add(c.Offset)
		case component.ChangeScaleMultiplier:
			t.Scale = t.Scale.Mul(c.Multiplier)
		case component.ChangeObjectSwap:
			spec, ok := s.Swaps[c.SwapPrefab]
			if !ok {
				log.Printf("anomaly: %v: swap prefab %q missing", e, c.SwapPrefab)
				return false
			}
			pos, yaw := entity.WorldPose(w, c.Target)
			if c.SwapFlip {
				yaw += 180
			}
			pos = pos.Add(c.Offset.RotateYaw(yaw))
			a.Substitute = entity.BuildSubstitute(w, spec, e, c.Target, pos, yaw, t.Scale)
			entity.SetActive(w, c.Target, false)
		}
		a.Snapshot = snap
	}

	a.Applied = true
	a.Chosen = c
	a.Sound = 0
	a.Playing = false
	return true
}

// RevertChange restores the exact pre-apply values. It is a no-op when
// nothing is applied.
func (s *AnomalySystem) RevertChange(w *ecs.World, e ecs.Entity) bool {
	a, ok := ecs.Get(w, e, component.AnomalyComponent.Kind())
	if !ok || !a.Applied {
		return false
	}
	c := a.Chosen

	if c != nil && c.Kind.IsAudio() {
		s.silence(w, a)
	} else if c != nil {
		if c.Kind == component.ChangeObjectSwap {
			entity.DestroyTree(w, a.Substitute)
		}
		if t, ok := ecs.Get(w, c.Target, component.TransformComponent.Kind()); ok {
			t.Position = a.Snapshot.Position
			t.Rotation = a.Snapshot.Rotation
			t.Scale = a.Snapshot.Scale
			if a.Snapshot.HadActive {
				entity.SetActive(w, c.Target, a.Snapshot.Active)
			} else {
				ecs.Remove(w, c.Target, component.ActiveComponent.Kind())
			}
			if r, ok := ecs.Get(w, c.Target, component.RenderableComponent.Kind()); ok {
				r.Color = a.Snapshot.Color
			}
		} else {
			log.Printf("anomaly: %v: revert target %v is gone", e, c.Target)
		}
	}

	a.Applied = false
	a.Chosen = nil
	a.Snapshot = component.ChangeSnapshot{}
	a.Substitute = 0
	return true
}

// Activate starts the sound of an applied audio anomaly. Call it after the
// ambience has been reset for the hallway the player just entered.
func (s *AnomalySystem) Activate(w *ecs.World, e ecs.Entity) {
	a, ok := ecs.Get(w, e, component.AnomalyComponent.Kind())
	if !ok || !a.Applied || a.Playing || a.Chosen == nil || !a.Chosen.Kind.IsAudio() {
		return
	}
	c := a.Chosen
	switch c.Kind {
	case component.ChangeSoundOneShot, component.ChangeSoundLoop:
		if s.Audio == nil {
			return
		}
		pos, _ := entity.WorldPose(w, c.Target)
		a.Sound = uint64(s.Audio.PlayAt(c.Sound, pos, c.Kind == component.ChangeSoundLoop, c.Volume))
	case component.ChangeAmbienceStop:
		RequestAmbience(w, component.AmbienceSilent, "")
	case component.ChangeAmbienceReplace:
		if c.Sound == "" {
			RequestAmbience(w, component.AmbienceWeird, s.WeirdLoop)
		} else {
			RequestAmbience(w, component.AmbienceReplace, c.Sound)
		}
	}
	a.Playing = true
}

func (s *AnomalySystem) silence(w *ecs.World, a *component.Anomaly) {
	if !a.Playing {
		return
	}
	switch a.Chosen.Kind {
	case component.ChangeSoundOneShot, component.ChangeSoundLoop:
		if s.Audio != nil && a.Sound != 0 {
			s.Audio.Stop(host.SoundID(a.Sound))
		}
	case component.ChangeAmbienceStop, component.ChangeAmbienceReplace:
		if !ambienceHeldElsewhere(w, a) {
			RequestAmbience(w, component.AmbienceNormal, "")
		}
	}
	a.Sound = 0
	a.Playing = false
}

// ambienceHeldElsewhere reports whether another hallway's ambience anomaly is
// sounding. A segment discarded after the player moved on must not reset the
// ambience the current segment asked for.
func ambienceHeldElsewhere(w *ecs.World, self *component.Anomaly) bool {
	held := false
	ecs.ForEach(w, component.AnomalyComponent.Kind(), func(_ ecs.Entity, a *component.Anomaly) {
		if held || a == self || !a.Playing || a.Chosen == nil {
			return
		}
		switch a.Chosen.Kind {
		case component.ChangeAmbienceStop, component.ChangeAmbienceReplace:
			held = true
		}
	})
	return held
}

func (s *AnomalySystem) intn(n int) int {
	if s.Rand == nil {
		return rand.Intn(n)
	}
	return s.Rand.Intn(n)
}
