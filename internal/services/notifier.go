package services

// Event types pushed to connected clients.
const (
	EventMembershipReviewed  = "membership.reviewed"
	EventOpportunityReviewed = "opportunity.reviewed"
	EventApplicationReceived = "application.received"
	EventApplicationStatus   = "application.status_changed"
)

// Notifier delivers realtime events to a user's open connections.
// Delivery is best effort.
type Notifier interface {
	Notify(userID, eventType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, interface{}) {}

func orNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
