package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/hallways/common"
	"github.com/milk9111/hallways/host"
)

var creditLines = []string{
	"HALLWAYS",
	"",
	"you found your way out",
	"",
	"design, code, sound",
	"the hallway crew",
	"",
	"built with ebiten, chipmunk, tengo",
	"",
	"thanks for walking",
}

// presenter draws the epilogue overlay: a curved fade to black followed by
// scrolling credits. ReloadScene is picked up by the App on its next tick.
type presenter struct {
	fadeSeconds float64
	fadeElapsed float64
	fadeCurve   common.Curve
	fading      bool

	credits       bool
	scrollSeconds float64
	scrollElapsed float64

	reload bool
}

func newPresenter() *presenter {
	return &presenter{}
}

func (p *presenter) FadeToBlack(seconds float64, curve common.Curve) {
	p.fading = true
	p.fadeSeconds = seconds
	p.fadeElapsed = 0
	p.fadeCurve = curve
}

func (p *presenter) ShowCredits() {
	p.credits = true
}

func (p *presenter) ScrollCredits(seconds float64) {
	p.scrollSeconds = seconds
	p.scrollElapsed = 0
}

func (p *presenter) ReloadScene() {
	p.reload = true
}

func (p *presenter) Update(dt float64) {
	if p.fading && p.fadeElapsed < p.fadeSeconds {
		p.fadeElapsed += dt
	}
	if p.credits && p.scrollElapsed < p.scrollSeconds {
		p.scrollElapsed += dt
	}
}

func (p *presenter) alpha() float64 {
	if !p.fading {
		return 0
	}
	if p.fadeSeconds <= 0 {
		return 1
	}
	return p.fadeCurve.Eval(p.fadeElapsed / p.fadeSeconds)
}

// blocking is true once the screen has gone dark; input is ignored then.
func (p *presenter) blocking() bool {
	return p.fading && p.alpha() >= 1
}

func (p *presenter) takeReload() bool {
	r := p.reload
	p.reload = false
	return r
}

func (p *presenter) Reset() {
	*p = presenter{}
}

func (p *presenter) Draw(screen *ebiten.Image) {
	if a := p.alpha(); a > 0 {
		vector.DrawFilledRect(screen, 0, 0, baseWidth, baseHeight, color.NRGBA{A: uint8(a * 255)}, false)
	}
	if !p.credits {
		return
	}

	lineHeight := 26.0
	total := float64(len(creditLines)) * lineHeight
	t := 1.0
	if p.scrollSeconds > 0 {
		t = common.Clamp01(p.scrollElapsed / p.scrollSeconds)
	}
	// Scroll from just below the screen until the block leaves the top.
	top := common.Lerp(baseHeight, -total, t)
	for i, line := range creditLines {
		if line == "" {
			continue
		}
		w, _ := ebtext.Measure(line, uiFace, 0)
		op := &ebtext.DrawOptions{}
		op.GeoM.Scale(2, 2)
		op.GeoM.Translate((baseWidth-2*w)/2, top+float64(i)*lineHeight)
		op.ColorScale.ScaleWithColor(color.White)
		ebtext.Draw(screen, line, uiFace, op)
	}
}

var _ host.Presenter = (*presenter)(nil)
