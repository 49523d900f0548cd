package tavern

// Stage buckets systems that run together each frame. Stages execute in the
// order listed in defaultStages; within a stage, systems run in registration
// order. The renderer depends on this: light updates happen in Update, the
// GPU passes in Render, and the buffer swap in Finale.
type Stage struct {
	Name string
}

var (
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
	Render     = Stage{Name: "Render"}
	Finale     = Stage{Name: "Finale"}
)

var defaultStages = []Stage{PreUpdate, Update, PostUpdate, Render, Finale}

type systemScheduleBuilder struct {
	inStage Stage
	system  systemFn
}

// System starts a schedule declaration for fn.
func System(fn systemFn) systemScheduleBuilder {
	return systemScheduleBuilder{system: fn}
}

func (sched systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	return systemScheduleBuilder{
		system:  sched.system,
		inStage: s,
	}
}
