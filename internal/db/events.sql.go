package db

import "context"

const insertProviderEventQuery = `
INSERT INTO provider_events (event_id, object_id, event_type, provider_ts, payload)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (event_id) DO NOTHING
`

func init() {
	registerQuery("InsertProviderEventIfNew", insertProviderEventQuery)
}

// InsertProviderEventParams groups the columns of one dedup record.
type InsertProviderEventParams struct {
	EventID    string
	ObjectID   string
	EventType  string
	ProviderTS int64
	Payload    []byte
}

// InsertProviderEventIfNew inserts the dedup record and reports whether it
// was new. A prior delivery (ON CONFLICT DO NOTHING path) returns false.
func (q *Queries) InsertProviderEventIfNew(ctx context.Context, arg InsertProviderEventParams) (bool, error) {
	res, err := q.exec(ctx, "InsertProviderEventIfNew", insertProviderEventQuery,
		arg.EventID, arg.ObjectID, arg.EventType, arg.ProviderTS, arg.Payload,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
