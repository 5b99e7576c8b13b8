package system

import (
	"strings"

	"github.com/milk9111/hallways/ecs"
	"github.com/milk9111/hallways/ecs/component"
	"github.com/milk9111/hallways/host"
)

// AmbienceSystem owns the single global ambience bed. Requests are one-shot
// entities; only the latest request of a frame is applied.
type AmbienceSystem struct {
	Audio host.Audio
}

func NewAmbienceSystem(audio host.Audio) *AmbienceSystem {
	return &AmbienceSystem{Audio: audio}
}

func RequestAmbience(w *ecs.World, mode component.AmbienceMode, track string) {
	if w == nil {
		return
	}
	ent := ecs.CreateEntity(w)
	_ = ecs.Add(w, ent, component.AmbienceRequestComponent.Kind(), &component.AmbienceRequest{
		Mode:  mode,
		Track: strings.TrimSpace(track),
		Loop:  mode == component.AmbienceWeird,
	})
}

func (s *AmbienceSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	latest, requestEntities := s.consumeLatestRequest(w)
	for _, ent := range requestEntities {
		ecs.DestroyEntity(w, ent)
	}
	if latest == nil {
		return
	}

	ent, ok := ecs.First(w, component.AmbiencePlayerComponent.Kind())
	if !ok {
		ent = ecs.CreateEntity(w)
		// A fresh bed starts out as normal ambience, matching what the host
		// plays when a scene loads.
		_ = ecs.Add(w, ent, component.AmbiencePlayerComponent.Kind(), &component.AmbiencePlayer{Mode: component.AmbienceNormal})
	}
	player, ok := ecs.Get(w, ent, component.AmbiencePlayerComponent.Kind())
	if !ok {
		return
	}
	if player.Mode == latest.Mode && player.Track == latest.Track {
		return
	}

	player.Mode = latest.Mode
	player.Track = latest.Track
	player.Loop = latest.Loop
	if s.Audio == nil {
		return
	}
	switch latest.Mode {
	case component.AmbienceNormal:
		s.Audio.PlayNormalAmbience()
	case component.AmbienceWeird:
		s.Audio.PlayWeirdAmbienceLooping(latest.Track)
	case component.AmbienceSilent:
		s.Audio.StopAmbience()
	case component.AmbienceReplace:
		s.Audio.ReplaceAmbience(latest.Track)
	}
}

// CurrentAmbience reports the mode the bed was last switched to.
func CurrentAmbience(w *ecs.World) component.AmbienceMode {
	ent, ok := ecs.First(w, component.AmbiencePlayerComponent.Kind())
	if !ok {
		return component.AmbienceNormal
	}
	p, ok := ecs.Get(w, ent, component.AmbiencePlayerComponent.Kind())
	if !ok {
		return component.AmbienceNormal
	}
	return p.Mode
}

func (s *AmbienceSystem) consumeLatestRequest(w *ecs.World) (*component.AmbienceRequest, []ecs.Entity) {
	var latest *component.AmbienceRequest
	requestEntities := make([]ecs.Entity, 0)

	ecs.ForEach(w, component.AmbienceRequestComponent.Kind(), func(ent ecs.Entity, req *component.AmbienceRequest) {
		requestEntities = append(requestEntities, ent)
		copy := *req
		latest = &copy
	})

	return latest, requestEntities
}
