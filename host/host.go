// Package host defines the collaborators the hallway core talks to. The core
// only issues semantic commands; mixing, drawing and scene management belong
// to the host.
package host

import "github.com/milk9111/hallways/common"

// SoundID identifies a sound started by PlayAt so it can be stopped later.
// Zero means "nothing playing".
type SoundID uint64

// Audio receives semantic sound commands.
type Audio interface {
	PlayNormalAmbience()
	PlayWeirdAmbienceLooping(loop string)
	ReplaceAmbience(track string)
	StopAmbience()

	PlayFootstep()
	PlayDoorOpen(at common.Vec3)
	PlayDoorClose(at common.Vec3)
	PlayDoorLocked(at common.Vec3)

	// PlayAt starts a positioned sound. Loops run until Stop.
	PlayAt(sound string, at common.Vec3, loop bool, volume float64) SoundID
	Stop(id SoundID)
}

// Presenter runs the epilogue presentation.
type Presenter interface {
	FadeToBlack(seconds float64, curve common.Curve)
	ShowCredits()
	ScrollCredits(seconds float64)
	ReloadScene()
}

// Nop satisfies every host interface and does nothing. It stands in for a
// missing collaborator so the core never has to nil-check its services.
type Nop struct{}

func (Nop) PlayNormalAmbience()                               {}
func (Nop) PlayWeirdAmbienceLooping(string)                   {}
func (Nop) ReplaceAmbience(string)                            {}
func (Nop) StopAmbience()                                     {}
func (Nop) PlayFootstep()                                     {}
func (Nop) PlayDoorOpen(common.Vec3)                          {}
func (Nop) PlayDoorClose(common.Vec3)                         {}
func (Nop) PlayDoorLocked(common.Vec3)                        {}
func (Nop) PlayAt(string, common.Vec3, bool, float64) SoundID { return 0 }
func (Nop) Stop(SoundID)                                      {}
func (Nop) FadeToBlack(float64, common.Curve)                 {}
func (Nop) ShowCredits()                                      {}
func (Nop) ScrollCredits(float64)                             {}
func (Nop) ReloadScene()                                      {}

var (
	_ Audio     = Nop{}
	_ Presenter = Nop{}
)
