package notify

// MessageType defines the type of an event message.
type MessageType string

const (
	// MessageTypeTransferCompleted is published once both legs of a transfer are durable.
	MessageTypeTransferCompleted MessageType = "transferCompleted"
	// MessageTypeTransferFailed is published when a transfer ends without moving money.
	MessageTypeTransferFailed MessageType = "transferFailed"
	// MessageTypeCompensationFailed is an alert: the source account was debited
	// and could not be refunded.
	MessageTypeCompensationFailed MessageType = "compensationFailed"
	// MessageTypeSagaStuck is an alert: a leg outcome stayed unknown past the
	// resume limit and the saga needs manual reconciliation.
	MessageTypeSagaStuck MessageType = "sagaStuck"
)

// Alert reports whether the message asks for manual reconciliation.
func (t MessageType) Alert() bool {
	return t == MessageTypeCompensationFailed || t == MessageTypeSagaStuck
}

// Message represents a generic event message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// TransferPayload is the payload of every transfer event.
type TransferPayload struct {
	SagaKey              string `json:"saga_key"`
	TransferID           string `json:"transfer_id,omitempty"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               string `json:"amount"`
	State                string `json:"state"`
	Reason               string `json:"reason,omitempty"`
}
