package tavern

// Typed scene queries. MakeQueryN builds a query over the Commands' scene;
// Map visits every entity carrying all requested components and stops early
// when the visitor returns false.

type Query1[A any] struct{ scene *Scene }
type Query2[A, B any] struct{ scene *Scene }
type Query3[A, B, C any] struct{ scene *Scene }

func MakeQuery1[A any](cmd *Commands) Query1[A] { return Query1[A]{scene: cmd.app.scene} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] {
	return Query2[A, B]{scene: cmd.app.scene}
}
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{scene: cmd.app.scene}
}

func (q Query1[A]) Map(m func(EntityId, *A) bool) {
	for _, eid := range q.scene.order {
		a := sceneGet[A](q.scene, eid)
		if a == nil {
			continue
		}
		if !m(eid, a) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool) {
	for _, eid := range q.scene.order {
		a := sceneGet[A](q.scene, eid)
		b := sceneGet[B](q.scene, eid)
		if a == nil || b == nil {
			continue
		}
		if !m(eid, a, b) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool) {
	for _, eid := range q.scene.order {
		a := sceneGet[A](q.scene, eid)
		b := sceneGet[B](q.scene, eid)
		c := sceneGet[C](q.scene, eid)
		if a == nil || b == nil || c == nil {
			continue
		}
		if !m(eid, a, b, c) {
			return
		}
	}
}
