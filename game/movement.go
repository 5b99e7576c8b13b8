package game

import (
	"github.com/milk9111/hallways/common"
)

const strideLength = 0.75

// Walk moves the player in its own frame and turns it by turn degrees. The
// step is swept through the collision space, so walls and shut doors stop it
// and glancing moves slide along them.
func (g *Game) Walk(forward, strafe, turn float64) {
	pos, yaw := g.PlayerPose()
	yaw = common.NormalizeAngle(yaw + turn)
	step := common.Forward(yaw).Scale(forward).Add(common.Forward(yaw + 90).Scale(strafe))
	next := g.Collision.Sweep(g.World, pos, pos.Add(step))
	g.MovePlayer(next, yaw)

	g.walked += next.Sub(pos).Len()
	if g.walked >= strideLength {
		g.walked = 0
		g.opts.Audio.PlayFootstep()
	}
}
