package main

import (
	"fmt"

	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/host"
)

// feed collects what the hosts were asked to do, for the log pane.
type feed struct {
	lines  []string
	nextID host.SoundID
	reload bool
}

func (f *feed) add(format string, args ...any) {
	f.lines = append(f.lines, fmt.Sprintf(format, args...))
}

func (f *feed) take() []string {
	out := f.lines
	f.lines = nil
	return out
}

type textAudio struct{ f *feed }

func (a textAudio) PlayNormalAmbience()               { a.f.add("♪ ambience: normal") }
func (a textAudio) PlayWeirdAmbienceLooping(s string) { a.f.add("♪ ambience: weird loop %q", s) }
func (a textAudio) ReplaceAmbience(s string)          { a.f.add("♪ ambience: replaced by %q", s) }
func (a textAudio) StopAmbience()                     { a.f.add("♪ ambience: silence") }
func (a textAudio) PlayFootstep()                     {}
func (a textAudio) PlayDoorOpen(at common.Vec3)       { a.f.add("door creaks open at z=%.1f", at.Z) }
func (a textAudio) PlayDoorClose(at common.Vec3)      { a.f.add("door shuts at z=%.1f", at.Z) }
func (a textAudio) PlayDoorLocked(at common.Vec3)     { a.f.add("the door is locked") }

func (a textAudio) PlayAt(sound string, at common.Vec3, loop bool, volume float64) host.SoundID {
	a.f.nextID++
	if loop {
		a.f.add("♪ %s starts looping nearby", sound)
	} else {
		a.f.add("♪ %s", sound)
	}
	return a.f.nextID
}

func (a textAudio) Stop(id host.SoundID) {
	a.f.add("♪ a sound stops")
}

type textPresenter struct{ f *feed }

func (p textPresenter) FadeToBlack(seconds float64, curve common.Curve) {
	p.f.add("the lights fade (%.1fs)", seconds)
}

func (p textPresenter) ShowCredits() { p.f.add("~ credits ~") }

func (p textPresenter) ScrollCredits(seconds float64) {
	p.f.add("credits roll for %.0fs", seconds)
}

func (p textPresenter) ReloadScene() {
	p.f.reload = true
}

var (
	_ host.Audio     = textAudio{}
	_ host.Presenter = textPresenter{}
)
