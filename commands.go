package occlusion

// Commands buffer scene changes until App.FlushCommands, so systems can
// spawn and despawn entities while a query is running.
type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// AddEntity reserves an id immediately; the entity exists after the next
// flush.
func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompChange{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompRemovals = append(cmd.app.pendingCompRemovals, pendingCompChange{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// GetAllComponents returns copies of the components of a flushed entity.
func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	return cmd.app.ecs.componentsOf(entityId)
}

// GetComponent returns a copy of entityId's component of type T.
func GetComponent[T any](cmd *Commands, entityId EntityId) (T, bool) {
	for _, c := range cmd.GetAllComponents(entityId) {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
