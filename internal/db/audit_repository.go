package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

const auditSchema = `
	CREATE TABLE IF NOT EXISTS order_audit_log (
		id          BIGSERIAL PRIMARY KEY,
		event_id    TEXT NOT NULL,
		event_type  TEXT NOT NULL,
		payload     JSONB NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)
`

// AuditRepository archives audit entries in Postgres. Only the audit trail is
// persisted; products and orders live in memory.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(database *PostgresDB) *AuditRepository {
	return &AuditRepository{db: database.Conn}
}

// EnsureSchema creates the audit table if it does not exist
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("failed to create audit table: %w", err)
	}
	return nil
}

// Save inserts one audit entry
func (r *AuditRepository) Save(ctx context.Context, entry models.AuditEntry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO order_audit_log (event_id, event_type, payload, recorded_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, entry.EventID, string(entry.Type), payload, entry.Timestamp); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	return nil
}

// ListByType returns archived entries of one type, oldest first. Payloads are
// returned as raw JSON.
func (r *AuditRepository) ListByType(ctx context.Context, eventType models.EventType) ([]models.AuditEntry, error) {
	query := `
		SELECT event_id, event_type, payload, recorded_at
		FROM order_audit_log
		WHERE event_type = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, string(eventType))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var (
			e       models.AuditEntry
			typ     string
			payload []byte
		)
		if err := rows.Scan(&e.EventID, &typ, &payload, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Type = models.EventType(typ)
		e.Payload = json.RawMessage(payload)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
