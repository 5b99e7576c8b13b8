package main

import (
	"bytes"
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/hallways/assets"
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/host"
	"github.com/milk9111/hallways/prefabs"
)

const (
	normalAmbience = "ambience_normal"
	falloffMeters  = 14.0
)

type clip struct {
	pcm    []byte
	volume float64
}

type voice struct {
	player *audio.Player
	loop   bool
}

// desktopAudio plays the core's sound commands through ebiten/audio. Clips
// come from the hallway prefab's audio map with synthesized fallbacks.
type desktopAudio struct {
	ctx      *audio.Context
	clips    map[string]clip
	voices   map[host.SoundID]*voice
	nextID   host.SoundID
	listener func() (x, z float64)

	ambience      *audio.Player
	ambienceTrack string
}

func newDesktopAudio() *desktopAudio {
	a := &desktopAudio{
		ctx:    assets.Context(),
		clips:  make(map[string]clip),
		voices: make(map[host.SoundID]*voice),
	}
	a.clips[normalAmbience] = clip{pcm: assets.Mix(
		assets.Synth(assets.Sine, 60, 4, 0.18),
		assets.Synth(assets.Noise, 1, 4, 0.03),
	), volume: 0.5}
	a.clips["footstep"] = clip{pcm: assets.Synth(assets.Noise, 1, 0.06, 0.4), volume: 0.4}
	a.clips["door_open"] = clip{pcm: assets.Synth(assets.Square, 160, 0.3, 0.2), volume: 0.6}
	a.clips["door_close"] = clip{pcm: assets.Mix(
		assets.Synth(assets.Square, 90, 0.18, 0.3),
		assets.Synth(assets.Noise, 1, 0.12, 0.2),
	), volume: 0.7}
	a.clips["door_locked"] = clip{pcm: assets.Synth(assets.Square, 70, 0.1, 0.3), volume: 0.6}
	return a
}

// LoadBank loads the clips named by the hallway prefab. A clip that cannot
// be decoded is replaced by a low tone so the anomaly is still audible.
func (a *desktopAudio) LoadBank(spec *prefabs.HallwaySpec) {
	if spec == nil {
		return
	}
	for name, as := range spec.Audio {
		vol := as.Volume
		if vol <= 0 {
			vol = 1
		}
		pcm, err := assets.LoadSound(as.File)
		if err != nil {
			log.Printf("audio: %s: %v (using tone)", name, err)
			pcm = assets.Synth(assets.Sine, 220, 0.5, 0.3)
		}
		a.clips[name] = clip{pcm: pcm, volume: vol}
	}
}

func (a *desktopAudio) PlayNormalAmbience() {
	a.playAmbience(normalAmbience)
}

func (a *desktopAudio) PlayWeirdAmbienceLooping(loop string) {
	a.playAmbience(loop)
}

func (a *desktopAudio) ReplaceAmbience(track string) {
	a.playAmbience(track)
}

func (a *desktopAudio) StopAmbience() {
	if a.ambience != nil {
		a.ambience.Pause()
		_ = a.ambience.Close()
		a.ambience = nil
	}
	a.ambienceTrack = ""
}

func (a *desktopAudio) playAmbience(track string) {
	if a.ambienceTrack == track && a.ambience != nil && a.ambience.IsPlaying() {
		return
	}
	a.StopAmbience()

	c, ok := a.clips[track]
	if !ok || len(c.pcm) == 0 {
		log.Printf("audio: ambience %q not loaded", track)
		return
	}
	stream := audio.NewInfiniteLoop(bytes.NewReader(c.pcm), int64(len(c.pcm)))
	p, err := a.ctx.NewPlayer(stream)
	if err != nil {
		log.Printf("audio: ambience %q: %v", track, err)
		return
	}
	p.SetVolume(c.volume)
	p.Play()
	a.ambience = p
	a.ambienceTrack = track
}

func (a *desktopAudio) PlayFootstep() {
	a.oneShot("footstep", 1)
}

func (a *desktopAudio) PlayDoorOpen(at common.Vec3) {
	a.oneShot("door_open", a.attenuate(at))
}

func (a *desktopAudio) PlayDoorClose(at common.Vec3) {
	a.oneShot("door_close", a.attenuate(at))
}

func (a *desktopAudio) PlayDoorLocked(at common.Vec3) {
	a.oneShot("door_locked", a.attenuate(at))
}

func (a *desktopAudio) oneShot(name string, gain float64) {
	c, ok := a.clips[name]
	if !ok || gain <= 0 {
		return
	}
	p := a.ctx.NewPlayerFromBytes(c.pcm)
	p.SetVolume(c.volume * gain)
	p.Play()
	a.nextID++
	a.voices[a.nextID] = &voice{player: p}
}

func (a *desktopAudio) PlayAt(sound string, at common.Vec3, loop bool, volume float64) host.SoundID {
	c, ok := a.clips[sound]
	if !ok {
		log.Printf("audio: sound %q not loaded", sound)
		return 0
	}
	if volume <= 0 {
		volume = 1
	}

	var p *audio.Player
	if loop {
		var err error
		p, err = a.ctx.NewPlayer(audio.NewInfiniteLoop(bytes.NewReader(c.pcm), int64(len(c.pcm))))
		if err != nil {
			log.Printf("audio: %s: %v", sound, err)
			return 0
		}
	} else {
		p = a.ctx.NewPlayerFromBytes(c.pcm)
	}
	p.SetVolume(c.volume * volume * a.attenuate(at))
	p.Play()

	a.nextID++
	a.voices[a.nextID] = &voice{player: p, loop: loop}
	return a.nextID
}

func (a *desktopAudio) Stop(id host.SoundID) {
	v, ok := a.voices[id]
	if !ok {
		return
	}
	v.player.Pause()
	_ = v.player.Close()
	delete(a.voices, id)
}

// Update releases finished one-shots.
func (a *desktopAudio) Update() {
	for id, v := range a.voices {
		if !v.loop && !v.player.IsPlaying() {
			_ = v.player.Close()
			delete(a.voices, id)
		}
	}
}

func (a *desktopAudio) StopAll() {
	for id := range a.voices {
		a.Stop(id)
	}
	a.StopAmbience()
}

func (a *desktopAudio) Close() {
	a.StopAll()
}

// attenuate is a linear falloff on the floor plane.
func (a *desktopAudio) attenuate(at common.Vec3) float64 {
	if a.listener == nil {
		return 1
	}
	x, z := a.listener()
	d := math.Hypot(at.X-x, at.Z-z)
	return math.Max(0.1, 1-d/falloffMeters)
}

var _ host.Audio = (*desktopAudio)(nil)
