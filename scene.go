package tavern

import (
	"fmt"
	"reflect"
	"sync"
)

type EntityId uint64

// Scene is a compact entity/component store. Each entity owns at most one
// component per Go type; queries visit entities in insertion order so draw
// submission stays deterministic frame to frame.
type Scene struct {
	components map[EntityId]map[reflect.Type]any
	order      []EntityId

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId
}

func MakeScene() Scene {
	return Scene{
		components: make(map[EntityId]map[reflect.Type]any),
	}
}

func (s *Scene) addEntity(components ...any) EntityId {
	entityId := s.nextEntityId()
	return s.insertEntity(entityId, components...)
}

func (s *Scene) insertEntity(entityId EntityId, components ...any) EntityId {
	slot, exists := s.components[entityId]
	if !exists {
		slot = make(map[reflect.Type]any)
		s.components[entityId] = slot
		s.order = append(s.order, entityId)
	}
	for _, component := range components {
		t, ptr := componentPointer(component)
		slot[t] = ptr
	}
	return entityId
}

func (s *Scene) removeEntity(entityId EntityId) {
	if _, ok := s.components[entityId]; !ok {
		return
	}
	delete(s.components, entityId)
	for i, eid := range s.order {
		if eid == entityId {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Scene) addComponents(entityId EntityId, components ...any) {
	if _, ok := s.components[entityId]; !ok {
		return
	}
	s.insertEntity(entityId, components...)
}

func (s *Scene) removeComponents(entityId EntityId, components ...any) {
	slot, ok := s.components[entityId]
	if !ok {
		return
	}
	for _, component := range components {
		t, _ := componentPointer(component)
		delete(slot, t)
	}
}

func (s *Scene) entityCount() int {
	return len(s.order)
}

// componentPointer normalizes a component value to (type, pointer). A struct
// value is copied so the stored pointer is mutable through queries; a pointer
// is stored as-is so callers can share state with the scene.
func componentPointer(component any) (reflect.Type, any) {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Pointer {
		if t.Elem().Kind() != reflect.Struct {
			panic(fmt.Errorf("component must be a struct or pointer to struct, got %s", t.Kind()))
		}
		return t.Elem(), component
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Errorf("component must be a struct or pointer to struct, got %s", t.Kind()))
	}
	v := reflect.New(t)
	v.Elem().Set(reflect.ValueOf(component))
	return t, v.Interface()
}

func (s *Scene) nextEntityId() EntityId {
	s.idGeneratorLock.Lock()
	defer s.idGeneratorLock.Unlock()

	id := s.entityIdCounter
	s.entityIdCounter += 1
	return id
}

func sceneGet[A any](s *Scene, eid EntityId) *A {
	slot, ok := s.components[eid]
	if !ok {
		return nil
	}
	t := reflect.TypeOf((*A)(nil)).Elem()
	if c, ok := slot[t]; ok {
		return c.(*A)
	}
	return nil
}
