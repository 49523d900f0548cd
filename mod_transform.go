package tavern

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a TRS pose. For root entities it is world space; for entities
// carrying a Parent it is local to the parent's world pose.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// NewTransform returns the identity pose.
func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Parent links an entity's Transform under another entity's pose.
type Parent struct {
	Entity EntityId
}

// maxHierarchyDepth bounds the propagation passes; deeper chains than this
// simply stop resolving, they do not loop.
const maxHierarchyDepth = 8

// TransformModule propagates parent poses into child poses and writes the
// resulting world matrices into Renderable.Model. It runs in PostUpdate so
// gameplay systems mutate Transforms in Update and the renderer reads
// finished matrices in Render.
type TransformModule struct{}

func (TransformModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(transformSystem).InStage(PostUpdate))
}

func transformSystem(cmd *Commands) {
	scene := cmd.app.scene
	world := make(map[EntityId]Transform)

	MakeQuery1[Transform](cmd).Map(func(eid EntityId, t *Transform) bool {
		if sceneGet[Parent](scene, eid) == nil {
			world[eid] = *t
		}
		return true
	})

	// Children resolve once their parent has; each pass settles one level.
	for pass := 0; pass < maxHierarchyDepth; pass++ {
		progressed := false
		MakeQuery2[Transform, Parent](cmd).Map(func(eid EntityId, local *Transform, parent *Parent) bool {
			if _, done := world[eid]; done {
				return true
			}
			parentWorld, ok := world[parent.Entity]
			if !ok {
				return true
			}
			world[eid] = composeTransform(parentWorld, *local)
			progressed = true
			return true
		})
		if !progressed {
			break
		}
	}

	MakeQuery2[Transform, Renderable](cmd).Map(func(eid EntityId, _ *Transform, r *Renderable) bool {
		if w, ok := world[eid]; ok {
			r.Model = w.Matrix()
		}
		return true
	})
}

// composeTransform applies a parent pose to a local pose component-wise,
// which preserves scale signs that a matrix decomposition would lose.
func composeTransform(parent, local Transform) Transform {
	scaled := mulVec3(local.Position, parent.Scale)
	return Transform{
		Position: parent.Position.Add(parent.Rotation.Rotate(scaled)),
		Rotation: parent.Rotation.Mul(local.Rotation).Normalize(),
		Scale:    mulVec3(parent.Scale, local.Scale),
	}
}
