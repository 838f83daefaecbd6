package occlusion

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

// Ecs stores scene entities grouped by archetype: every entity with the same
// set of component types shares one archetype, whose components live in
// typed slices indexed by row.
type Ecs struct {
	archetypes  map[archetypeId]*archetype
	entityIndex map[EntityId]archetypeId

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId

	componentIdLock    sync.Mutex
	componentIdCounter componentId
	componentTypeIdMap map[reflect.Type]componentId
	componentIdTypeMap map[componentId]reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:         make(map[archetypeId]*archetype),
		entityIndex:        make(map[EntityId]archetypeId),
		componentTypeIdMap: make(map[reflect.Type]componentId),
		componentIdTypeMap: make(map[componentId]reflect.Type),
	}
}

type archetype struct {
	id            archetypeId
	key           archetypeKey
	entities      map[EntityId]row
	componentData map[componentId]any // []T per component type
	recycled      []row
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	return ecs.insertEntity(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	archId, arch := ecs.getOrMakeArchetype(ecs.getArchetypeKey(components...))

	r := ecs.archetypeReserveRow(arch)
	arch.entities[entityId] = r
	for _, component := range components {
		ecs.writeComponent(arch, r, component)
	}
	ecs.entityIndex[entityId] = archId
	return entityId
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

func (ecs *Ecs) removeEntity(entityId EntityId) {
	if !ecs.hasEntity(entityId) {
		return
	}
	ecs.recycleEntity(entityId)
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	srcArch := ecs.archetypes[ecs.entityIndex[entityId]]
	srcRow := srcArch.entities[entityId]

	dstKey := dedupAndSortArchetypeKey(append(slices.Clone(srcArch.key), ecs.getArchetypeKey(components...)...))
	ecs.moveEntity(entityId, srcArch, srcRow, dstKey, components)
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	srcArch := ecs.archetypes[ecs.entityIndex[entityId]]
	srcRow := srcArch.entities[entityId]

	remove := make(set[componentId])
	for _, c := range components {
		remove[ecs.getComponentId(componentType(c))] = struct{}{}
	}
	var dstKey archetypeKey
	for _, id := range srcArch.key {
		if _, ok := remove[id]; !ok {
			dstKey = append(dstKey, id)
		}
	}
	ecs.moveEntity(entityId, srcArch, srcRow, dstKey, nil)
}

// moveEntity copies the shared components of entityId into the archetype
// for dstKey, then writes extra on top.
func (ecs *Ecs) moveEntity(entityId EntityId, srcArch *archetype, srcRow row, dstKey archetypeKey, extra []any) {
	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	dstRow := ecs.archetypeReserveRow(dstArch)

	for _, id := range srcArch.key {
		if _, ok := dstArch.componentData[id]; !ok {
			continue
		}
		reflectSliceSet(dstArch.componentData[id], int(dstRow), reflectSliceGet(srcArch.componentData[id], int(srcRow)))
	}
	for _, component := range extra {
		ecs.writeComponent(dstArch, dstRow, component)
	}

	ecs.recycleEntity(entityId)
	dstArch.entities[entityId] = dstRow
	ecs.entityIndex[entityId] = dstArchId
}

// componentsOf returns copies of every component of entityId.
func (ecs *Ecs) componentsOf(entityId EntityId) []any {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]
	r := arch.entities[entityId]

	res := make([]any, 0, len(arch.key))
	for _, id := range arch.key {
		res = append(res, reflectSliceGet(arch.componentData[id], int(r)).Interface())
	}
	return res
}

func (ecs *Ecs) writeComponent(dstArch *archetype, dstRow row, component any) {
	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}
	id := ecs.getComponentId(componentType(component))
	reflectSliceSet(dstArch.componentData[id], int(dstRow), value)
}

func (ecs *Ecs) recycleEntity(entityId EntityId) {
	arch := ecs.archetypes[ecs.entityIndex[entityId]]

	r := arch.entities[entityId]
	for _, id := range arch.key {
		reflectSliceSet(arch.componentData[id], int(r), reflect.Zero(ecs.componentIdTypeMap[id]))
	}
	arch.recycled = append(arch.recycled, r)

	delete(arch.entities, entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) (archetypeId, *archetype) {
	id := getArchetypeId(key)
	if arch, ok := ecs.archetypes[id]; ok {
		return id, arch
	}

	arch := &archetype{
		id:            id,
		key:           key,
		entities:      make(map[EntityId]row),
		componentData: make(map[componentId]any),
	}
	for _, cid := range key {
		arch.componentData[cid] = reflectSliceMake(ecs.componentIdTypeMap[cid])
	}
	ecs.archetypes[id] = arch
	return id, arch
}

func (ecs *Ecs) archetypeReserveRow(arch *archetype) row {
	if n := len(arch.recycled); n > 0 {
		r := arch.recycled[n-1]
		arch.recycled = arch.recycled[:n-1]
		return r
	}

	var r row
	for _, cid := range arch.key {
		r = row(reflectSliceLen(arch.componentData[cid]))
		arch.componentData[cid] = reflectSliceAppend(
			arch.componentData[cid],
			reflect.Zero(ecs.componentIdTypeMap[cid]),
		)
	}
	if len(arch.key) == 0 {
		r = row(len(arch.entities) + len(arch.recycled))
	}
	return r
}

// getArchetypeKey returns the sorted, deduplicated component ids of
// components. The archetype id is a hash of this key.
func (ecs *Ecs) getArchetypeKey(components ...any) archetypeKey {
	var res archetypeKey
	for _, component := range components {
		res = append(res, ecs.getComponentId(componentType(component)))
	}
	return dedupAndSortArchetypeKey(res)
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

func getArchetypeId(key archetypeKey) archetypeId {
	hash := fnv.New64a()
	b := make([]byte, 8)
	for _, cid := range key {
		binary.LittleEndian.PutUint64(b, uint64(cid))
		hash.Write(b)
	}
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idGeneratorLock.Lock()
	defer ecs.idGeneratorLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter++
	return id
}

func (ecs *Ecs) getComponentId(t reflect.Type) componentId {
	ecs.componentIdLock.Lock()
	defer ecs.componentIdLock.Unlock()

	if id, ok := ecs.componentTypeIdMap[t]; ok {
		return id
	}
	id := ecs.componentIdCounter
	ecs.componentIdCounter++
	ecs.componentTypeIdMap[t] = id
	ecs.componentIdTypeMap[id] = t
	return id
}

// componentType resolves the struct type of a component passed by value or
// by pointer.
func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected component to be a struct or a pointer to a struct, got %s", t.Kind()))
	}
	return t
}

// Component columns are []T held as any; these helpers index them without
// knowing T.

func reflectSliceMake(elem reflect.Type) any {
	return reflect.MakeSlice(reflect.SliceOf(elem), 0, 1).Interface()
}

func reflectSliceGet(slice any, idx int) reflect.Value {
	return reflect.ValueOf(slice).Index(idx)
}

func reflectSliceSet(slice any, idx int, val reflect.Value) {
	reflect.ValueOf(slice).Index(idx).Set(val)
}

func reflectSliceAppend(slice any, val reflect.Value) any {
	return reflect.Append(reflect.ValueOf(slice), val).Interface()
}

func reflectSliceLen(slice any) int {
	return reflect.ValueOf(slice).Len()
}
