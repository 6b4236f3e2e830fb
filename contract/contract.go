//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-hub/domain/event"
	"context"
)

// EventSink receives presence events bound for a transport. The transport
// layer decides how to serialize them onto the wire; the presence core only
// guarantees it sees them in emission order.
type EventSink interface {
	Consume(ctx context.Context, e event.PresenceEvent) error
}
