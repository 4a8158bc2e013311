package ledger

// Wire schema of the 1inch history indexer. Events are envelopes around a
// details object; amounts and addresses arrive as strings. Records are
// immutable once returned.

type historyResponse struct {
	Items []RawLedgerEvent `json:"items"`
}

// RawLedgerEvent is one on-chain event as returned by the indexer.
type RawLedgerEvent struct {
	TimeMs  int64        `json:"timeMs"`
	Details EventDetails `json:"details"`
}

type EventDetails struct {
	TxHash       string        `json:"txHash"`
	BlockNumber  uint64        `json:"blockNumber"`
	FromAddress  string        `json:"fromAddress"`
	ToAddress    string        `json:"toAddress"`
	Input        string        `json:"input"`
	Status       string        `json:"status"`
	EventName    string        `json:"eventName,omitempty"`
	TokenActions []TokenAction `json:"tokenActions"`
}

// TokenAction is one token-transfer sub-action inside an event.
type TokenAction struct {
	Address     string `json:"address"`
	Standard    string `json:"standard"`
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
	Amount      string `json:"amount"`
	Direction   string `json:"direction"`
}

// Timestamp returns the event time in whole seconds.
func (e RawLedgerEvent) Timestamp() int64 {
	return e.TimeMs / 1000
}
