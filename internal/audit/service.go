package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aryanbrs/packklite-sub001/internal/common"
	dbgen "github.com/aryanbrs/packklite-sub001/internal/db/gen"
)

// Store defines the database operations required for auditing.
type Store interface {
	CreateAuditLog(ctx context.Context, arg dbgen.CreateAuditLogParams) error
	ListAuditLogs(ctx context.Context, arg dbgen.ListAuditLogsParams) ([]dbgen.AuditLog, error)
	CountAuditLogs(ctx context.Context) (int64, error)
}

// Entry is one admin mutation worth keeping a trail of.
type Entry struct {
	AdminID      string
	Action       string
	ResourceType string
	ResourceID   string
	Metadata     map[string]any
}

// LogEntry is the API representation of a stored audit row.
type LogEntry struct {
	ID           string          `json:"id"`
	AdminID      *string         `json:"admin_id"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Service persists audit logs for admin back-office flows.
type Service struct {
	Store Store
}

// Record persists one entry. A missing or malformed admin id is stored as NULL
// so system actions can be recorded too.
func (s Service) Record(ctx context.Context, e Entry) error {
	if s.Store == nil {
		return errors.New("audit: store not configured")
	}
	action := strings.TrimSpace(e.Action)
	if action == "" {
		return errors.New("audit: action is required")
	}
	var metadata []byte
	if len(e.Metadata) > 0 {
		data, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("audit metadata: %w", err)
		}
		metadata = data
	}
	err := s.Store.CreateAuditLog(ctx, dbgen.CreateAuditLogParams{
		AdminID:      toNullUUID(e.AdminID),
		Action:       action,
		ResourceType: strings.TrimSpace(e.ResourceType),
		ResourceID:   strings.TrimSpace(e.ResourceID),
		Metadata:     metadata,
	})
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns one page of entries, newest first.
func (s Service) List(ctx context.Context, p common.Pagination) ([]LogEntry, int64, error) {
	total, err := s.Store.CountAuditLogs(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}
	rows, err := s.Store.ListAuditLogs(ctx, dbgen.ListAuditLogsParams{Limit: int32(p.PerPage), Offset: int32(p.Offset())})
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	out := make([]LogEntry, 0, len(rows))
	for _, row := range rows {
		entry := LogEntry{
			ID:           row.ID.String(),
			Action:       row.Action,
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			CreatedAt:    row.CreatedAt,
		}
		if row.AdminID.Valid {
			id := uuid.UUID(row.AdminID.Bytes).String()
			entry.AdminID = &id
		}
		if len(row.Metadata) > 0 {
			entry.Metadata = json.RawMessage(row.Metadata)
		}
		out = append(out, entry)
	}
	return out, total, nil
}

func toNullUUID(value string) pgtype.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}
