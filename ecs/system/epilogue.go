package system

import (
	"log"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/ecs/entity"
	"github.com/milk9111/hallways/host"
	"github.com/milk9111/hallways/prefabs"
)

// EpilogueSystem runs the lift's end sequence: button, doors, fade, credits,
// reload. It keeps no per-frame work; the sequence is a task bound to the lift.
type EpilogueSystem struct {
	Presenter host.Presenter
	Spec      *prefabs.LiftSpec
}

func NewEpilogueSystem(presenter host.Presenter, spec *prefabs.LiftSpec) *EpilogueSystem {
	return &EpilogueSystem{Presenter: presenter, Spec: spec}
}

// Press starts the sequence once. Later presses, and presses on a hidden
// lift, are ignored.
func (s *EpilogueSystem) Press(w *ecs.World, lift ecs.Entity) bool {
	ep, ok := ecs.Get(w, lift, component.EpilogueComponent.Kind())
	if !ok {
		log.Printf("epilogue: %v is not a lift", lift)
		return false
	}
	if ep.Started || !entity.ActiveInHierarchy(w, lift) {
		return false
	}
	l, ok := ecs.Get(w, lift, component.LiftComponent.Kind())
	if !ok {
		return false
	}
	spec := s.Spec
	if spec == nil {
		log.Printf("epilogue: no lift timings configured, using zeros")
		spec = &prefabs.LiftSpec{}
	}
	presenter := s.Presenter
	if presenter == nil {
		presenter = host.Nop{}
	}

	ep.Started = true
	ep.Phase = component.EpiloguePressed

	button, left, right := l.Button, l.LeftDoor, l.RightDoor
	push := l.ButtonPush
	setPhase := func(w *ecs.World, phase component.EpiloguePhase) {
		if ep, ok := ecs.Get(w, lift, component.EpilogueComponent.Kind()); ok {
			ep.Phase = phase
		}
	}

	ep.Task = Schedule(w, "epilogue", []component.TaskOwner{Owner(w, lift)},
		component.TaskStep{Name: "button", Do: func(w *ecs.World) {
			if t, ok := ecs.Get(w, button, component.TransformComponent.Kind()); ok {
				StartTween(w, button, component.TweenPosition, t.Position.Add(push), spec.ButtonPressSeconds, common.CurveEaseOut)
			}
		}},
		component.TaskStep{Name: "doors", Wait: spec.ButtonPressSeconds + spec.ButtonDelay, Do: func(w *ecs.World) {
			setPhase(w, component.EpilogueDoorsClosing)
			for _, leaf := range []ecs.Entity{left, right} {
				sd, ok := ecs.Get(w, leaf, component.SlidingDoorComponent.Kind())
				if !ok {
					log.Printf("epilogue: sliding door %v missing", leaf)
					continue
				}
				StartTween(w, leaf, component.TweenPosition, sd.ClosedPosition, spec.DoorCloseSeconds, common.CurveEaseInOut)
			}
		}},
		component.TaskStep{Name: "fade", Wait: spec.DoorCloseSeconds + spec.PostCloseDelay, Do: func(w *ecs.World) {
			setPhase(w, component.EpilogueFading)
			presenter.FadeToBlack(spec.FadeSeconds, common.Curve(spec.FadeCurve))
		}},
		component.TaskStep{Name: "credits", Wait: spec.FadeSeconds, Do: func(w *ecs.World) {
			setPhase(w, component.EpilogueCredits)
			presenter.ShowCredits()
			presenter.ScrollCredits(spec.CreditsSeconds)
		}},
		component.TaskStep{Name: "reload", Wait: spec.CreditsSeconds, Do: func(w *ecs.World) {
			setPhase(w, component.EpilogueDone)
			presenter.ReloadScene()
		}},
	)
	log.Printf("epilogue: started")
	return true
}
