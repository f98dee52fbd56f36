package domain

import (
	"fmt"
	"time"
)

// ContainerKind distinguishes the three derived groupings a task can be
// dropped into. Containers are never persisted; they are views over the
// task's date and status columns.
type ContainerKind int

const (
	ContainerBacklog ContainerKind = iota
	ContainerDay
	ContainerLane
)

// BacklogToken is the container identifier used by drag events for the
// unscheduled backlog.
const BacklogToken = "backlog"

const dayLayout = "2006-01-02"

// Container identifies a drop source or destination: the backlog, one
// calendar day, or one kanban lane.
type Container struct {
	Kind ContainerKind
	Day  time.Time // start of day in the viewer's location, Kind == ContainerDay
	Lane Lane      // Kind == ContainerLane
}

// ParseContainer interprets a raw container identifier from a drag event:
// the literal "backlog" token, a YYYY-MM-DD date string, or a kanban lane
// token. Date containers are normalized to start-of-day in loc.
func ParseContainer(raw string, loc *time.Location) (Container, error) {
	if raw == BacklogToken {
		return Container{Kind: ContainerBacklog}, nil
	}
	if _, ok := Lane(raw).Status(); ok {
		return Container{Kind: ContainerLane, Lane: Lane(raw)}, nil
	}
	day, err := time.ParseInLocation(dayLayout, raw, loc)
	if err != nil {
		return Container{}, fmt.Errorf("container %q: %w", raw, ErrValidation)
	}
	return Container{Kind: ContainerDay, Day: day}, nil
}

// String renders the container back to its drag-event identifier.
func (c Container) String() string {
	switch c.Kind {
	case ContainerDay:
		return c.Day.Format(dayLayout)
	case ContainerLane:
		return string(c.Lane)
	default:
		return BacklogToken
	}
}

// DayContainer builds the date container holding t, in loc.
func DayContainer(t time.Time, loc *time.Location) Container {
	return Container{Kind: ContainerDay, Day: StartOfDay(t, loc)}
}
