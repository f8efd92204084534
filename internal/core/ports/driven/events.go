package driven

import "github.com/Cyb-Leon/jse-decision-support/internal/core/domain"

// EventPublisher broadcasts pipeline state changes.
// Publish must not block the pipeline; slow subscribers may miss events.
type EventPublisher interface {
	Publish(event domain.StatusEvent)
}
