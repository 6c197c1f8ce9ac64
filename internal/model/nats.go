package model

// QuotaRequest asks for the current day's quota standings over NATS. It has
// no fields; the reply covers every tracked service.
type QuotaRequest struct {
}

// ResearchRequest asks for a topic briefing over NATS.
type ResearchRequest struct {

	// The topic to research
	Topic string `json:"topic"`
}

// NATSError carries a failure back to a NATS requester.
type NATSError struct {

	// A description of what went wrong
	Message string `json:"message"`
}
