package tavern

import (
	"testing"
)

func TestScene_QueryMap(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b float32 }
	type Comp3 struct{}

	scene := MakeScene()
	scene.addEntity(Comp1{a: 1})                                 // comp1 only                       -- shouldn't match
	id2 := scene.addEntity(Comp1{a: 2}, Comp2{b: 1.37})          // comp1 & comp2                    -- should match
	id3 := scene.addEntity(Comp1{a: 3}, Comp2{b: 4.20}, Comp3{}) // comp1 & comp2 + something extra  -- should match
	scene.addEntity(Comp1{a: 4}, Comp3{})                        // comp1 + something extra          -- shouldn't match
	scene.addEntity(Comp2{b: 3.14})                              // comp2 only                       -- shouldn't match

	query := Query2[Comp1, Comp2]{scene: &scene}

	expectedEntityIds := []EntityId{id2, id3}
	expectedComponentsA := []Comp1{{a: 2}, {a: 3}}
	expectedComponentsB := []Comp2{{b: 1.37}, {b: 4.20}}
	numResults := 0

	query.Map(func(entityId EntityId, comp1 *Comp1, comp2 *Comp2) bool {
		if entityId != expectedEntityIds[numResults] {
			t.Errorf("Unexpected EntityId for row %v, expected %v got %v", numResults, expectedEntityIds[numResults], entityId)
		}
		if *comp1 != expectedComponentsA[numResults] {
			t.Errorf("Unexpected A for row %v, expected %v got %v", numResults, expectedComponentsA[numResults], *comp1)
		}
		if *comp2 != expectedComponentsB[numResults] {
			t.Errorf("Unexpected B for row %v, expected %v got %v", numResults, expectedComponentsB[numResults], *comp2)
		}

		numResults += 1
		return true
	})

	if numResults != 2 {
		t.Errorf("Unexpected number of results, got %v", numResults)
	}
}

func TestScene_QueryMapEarlyExit(t *testing.T) {
	type Comp struct{ a int }

	scene := MakeScene()
	scene.addEntity(Comp{a: 1})
	scene.addEntity(Comp{a: 2})
	scene.addEntity(Comp{a: 3})

	visited := 0
	query := Query1[Comp]{scene: &scene}
	query.Map(func(eid EntityId, c *Comp) bool {
		visited++
		return visited < 2
	})

	if visited != 2 {
		t.Errorf("Expected visitor to stop after 2 entities, got %v", visited)
	}
}

func TestScene_InsertionOrder(t *testing.T) {
	type Comp struct{ a int }

	scene := MakeScene()
	var want []EntityId
	for i := 0; i < 5; i++ {
		want = append(want, scene.addEntity(Comp{a: i}))
	}
	scene.removeEntity(want[2])
	want = append(want[:2], want[3:]...)

	var got []EntityId
	query := Query1[Comp]{scene: &scene}
	query.Map(func(eid EntityId, c *Comp) bool {
		got = append(got, eid)
		return true
	})

	if len(got) != len(want) {
		t.Fatalf("Expected %v entities, got %v", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Row %v out of order: expected %v got %v", i, want[i], got[i])
		}
	}
}

func TestScene_PointerComponentsShareState(t *testing.T) {
	type Comp struct{ a int }

	scene := MakeScene()
	shared := &Comp{a: 1}
	eid := scene.addEntity(shared)

	shared.a = 42
	got := sceneGet[Comp](&scene, eid)
	if got == nil || got.a != 42 {
		t.Errorf("Expected stored pointer to share state, got %+v", got)
	}
	if got != shared {
		t.Errorf("Expected the same pointer back")
	}
}

func TestScene_ValueComponentsAreCopied(t *testing.T) {
	type Comp struct{ a int }

	scene := MakeScene()
	local := Comp{a: 1}
	eid := scene.addEntity(local)

	local.a = 99
	got := sceneGet[Comp](&scene, eid)
	if got == nil || got.a != 1 {
		t.Errorf("Expected stored copy unaffected by caller mutation, got %+v", got)
	}
}

func TestScene_RejectsNonStructComponents(t *testing.T) {
	scene := MakeScene()

	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for non-struct component")
		}
	}()
	scene.addEntity(42)
}
