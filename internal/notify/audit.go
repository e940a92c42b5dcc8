package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prudhivi99/Distributed-Systems/minisys-orders/internal/models"
)

// AuditSink mirrors audit entries somewhere durable.
type AuditSink interface {
	Save(ctx context.Context, entry models.AuditEntry) error
}

// AuditLogger keeps an append-only, in-memory trail of every event it sees.
type AuditLogger struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
	sink    AuditSink
	now     func() time.Time
}

// NewAuditLogger creates an audit logger. sink may be nil.
func NewAuditLogger(sink AuditSink) *AuditLogger {
	return &AuditLogger{sink: sink, now: func() time.Time { return time.Now().UTC() }}
}

func (a *AuditLogger) Name() string { return "audit" }

// Handle records the event in memory first, then mirrors it to the sink.
func (a *AuditLogger) Handle(ctx context.Context, ev models.Event) error {
	entry := models.AuditEntry{
		Timestamp: a.now(),
		EventID:   ev.ID,
		Type:      ev.Type,
		Payload:   ev.Payload,
	}

	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()

	if a.sink == nil {
		return nil
	}
	if err := a.sink.Save(ctx, entry); err != nil {
		return fmt.Errorf("archive audit entry %s: %w", ev.ID, err)
	}
	return nil
}

// Entries returns the full trail, oldest first.
func (a *AuditLogger) Entries() []models.AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return append([]models.AuditEntry(nil), a.entries...)
}

func (a *AuditLogger) EntriesByType(typ models.EventType) []models.AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []models.AuditEntry
	for _, e := range a.entries {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (a *AuditLogger) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = nil
}
