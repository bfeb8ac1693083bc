package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/goccy/go-json"
)

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"activity.created": {
		Topic:         "activity_events",
		SchemaSubject: "activity_events-value",
	},
	"activity.deleted": {
		Topic:         "activity_events",
		SchemaSubject: "activity_events-value",
	},
	"allowance.recomputed": {
		Topic:         "allowance_events",
		SchemaSubject: "allowance_events-value",
	},
}

// insertOutbox records an event row in the same transaction as the state
// change it announces. Partitioning by user keeps per-user ordering. The
// dedupe key must be unique per logical occurrence; recurring events such
// as recomputes include a timestamp component.
func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, userID, eventType, dedupeKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta := eventCatalog[eventType]
	if meta.Topic == "" {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		userID,
		body,
		dedupeKey,
	)
	return err
}

func dedupe(aggregateID, eventType string) string {
	return fmt.Sprintf("%s:%s", aggregateID, eventType)
}
