package domain

import "encoding/json"

// ProviderEvent is a durable dedup record keyed by EventID. Its sole role is
// deduplication — the pipeline does not read its payload back out once
// written.
type ProviderEvent struct {
	EventID    string
	ObjectID   string
	EventType  string
	ProviderTS int64
	Payload    json.RawMessage
}
