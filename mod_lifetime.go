package tavern

import "time"

// Lifetime removes its entity once the remaining duration runs out. Handy
// for short-lived scene objects like sparks or dropped props.
type Lifetime struct {
	Remaining time.Duration
}

type LifetimeModule struct{}

func (LifetimeModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(lifetimeSystem).InStage(PostUpdate))
}

func lifetimeSystem(time *Time, cmd *Commands) {
	if time.Dt <= 0 {
		return
	}
	MakeQuery1[Lifetime](cmd).Map(func(eid EntityId, lt *Lifetime) bool {
		lt.Remaining -= time.Dt
		if lt.Remaining <= 0 {
			cmd.RemoveEntity(eid)
		}
		return true
	})
}
