// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package ember

import "fmt"

// WorldErrorKind identifies the class of failure a WorldError reports.
type WorldErrorKind int

const (
	// DuplicateComponent: add_component<T> called on an entity that
	// already holds a component of type T.
	DuplicateComponent WorldErrorKind = iota
	// MissingComponent: get_component<T> called on an entity lacking T.
	MissingComponent
	// EntityNotFound: the referenced entity id does not exist.
	EntityNotFound
	// UnclonableComponent: duplicate_entity met a component kind marked
	// with MarkUnclonable. Kinds with no registered cloner are
	// shallow-copied and never raise it.
	UnclonableComponent
)

func (k WorldErrorKind) String() string {
	switch k {
	case DuplicateComponent:
		return "DuplicateComponent"
	case MissingComponent:
		return "MissingComponent"
	case EntityNotFound:
		return "EntityNotFound"
	case UnclonableComponent:
		return "UnclonableComponent"
	default:
		return "UnknownWorldError"
	}
}

// WorldError reports a failed World or component-registry operation.
type WorldError struct {
	Kind   WorldErrorKind
	Entity Entity
	Type   string // component type name, when relevant
}

func (e *WorldError) Error() string {
	switch e.Kind {
	case DuplicateComponent:
		return fmt.Sprintf("entity %d already has component %s", e.Entity, e.Type)
	case MissingComponent:
		return fmt.Sprintf("entity %d has no component %s", e.Entity, e.Type)
	case EntityNotFound:
		return fmt.Sprintf("entity %d does not exist", e.Entity)
	case UnclonableComponent:
		return fmt.Sprintf("component %s cannot be cloned", e.Type)
	default:
		return fmt.Sprintf("world error: %s", e.Kind)
	}
}

// SchedulerErrorKind identifies the class of failure a SchedulerError reports.
type SchedulerErrorKind int

const (
	// DuplicateSystem: the same system instance was registered twice.
	DuplicateSystem SchedulerErrorKind = iota
	// NotInitialized: update called before initialize.
	NotInitialized
	// AlreadyInitialized: initialize called a second time.
	AlreadyInitialized
	// UnknownSystem: an operation referenced a system not registered
	// with this scheduler.
	UnknownSystem
)

func (k SchedulerErrorKind) String() string {
	switch k {
	case DuplicateSystem:
		return "DuplicateSystem"
	case NotInitialized:
		return "NotInitialized"
	case AlreadyInitialized:
		return "AlreadyInitialized"
	case UnknownSystem:
		return "UnknownSystem"
	default:
		return "UnknownSchedulerError"
	}
}

// SchedulerError reports a failed Scheduler lifecycle operation.
type SchedulerError struct {
	Kind SchedulerErrorKind
	Name string
}

func (e *SchedulerError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("scheduler: %s: %s", e.Kind, e.Name)
	}
	return fmt.Sprintf("scheduler: %s", e.Kind)
}
