package occlusion

import (
	"reflect"
)

// Queries visit every entity that has all of the query's component types.
// A type listed in optionals may be missing; its pointer is then nil.
// Iteration order is unspecified; callers that need a stable order collect
// and sort by EntityId.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }

// column returns the typed component slice of arch for id. ok is false when
// the archetype lacks a required component.
func column[T any](arch *archetype, id componentId, opt set[componentId]) (comps []T, present bool, ok bool) {
	if data, has := arch.componentData[id]; has {
		return data.([]T), true, true
	}
	if _, optional := opt[id]; optional {
		return nil, false, true
	}
	return nil, false, false
}

func at[T any](comps []T, present bool, r row) *T {
	if !present {
		return nil
	}
	return &comps[r]
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	id1 := identifyComponent[A](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		comps1, has1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(comps1, has1, r)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	id1, id2 := identifyComponent[A](q.ecs), identifyComponent[B](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		comps1, has1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		comps2, has2, ok := column[B](arch, id2, opt)
		if !ok {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(comps1, has1, r), at(comps2, has2, r)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	id1, id2, id3 := identifyComponent[A](q.ecs), identifyComponent[B](q.ecs), identifyComponent[C](q.ecs)
	opt := identifyOptionals(q.ecs, optionals...)

	for _, arch := range q.ecs.archetypes {
		comps1, has1, ok := column[A](arch, id1, opt)
		if !ok {
			continue
		}
		comps2, has2, ok := column[B](arch, id2, opt)
		if !ok {
			continue
		}
		comps3, has3, ok := column[C](arch, id3, opt)
		if !ok {
			continue
		}
		for entityId, r := range arch.entities {
			if !m(entityId, at(comps1, has1, r), at(comps2, has2, r), at(comps3, has3, r)) {
				return
			}
		}
	}
}

func identifyOptionals(ecs *Ecs, components ...any) set[componentId] {
	res := make(set[componentId])
	for _, c := range components {
		res[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	return res
}

func identifyComponent[A any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeFor[A]())
}
