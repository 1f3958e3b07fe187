package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
	"github.com/custos-grc/custos/internal/shared/db"
)

// Record is one audit trail entry as returned to readers.
type Record struct {
	TenantID       string          `json:"tenant_id"`
	ActorID        string          `json:"actor_id"`
	Action         string          `json:"action"`
	EntityType     string          `json:"entity_type"`
	EntityID       string          `json:"entity_id"`
	BeforeSnapshot json.RawMessage `json:"before_snapshot,omitempty"`
	AfterSnapshot  json.RawMessage `json:"after_snapshot,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// Filter narrows an audit trail query. Zero values match everything.
type Filter struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
}

// Query reads the audit trail. The trail is append-only; this type exposes no
// update or delete path.
type Query struct {
	db *gorm.DB
}

// NewQuery creates an audit trail query.
func NewQuery(gdb *gorm.DB) *Query {
	return &Query{db: gdb}
}

// List returns audit entries for a tenant, newest first.
func (q *Query) List(ctx context.Context, tenantID string, filter Filter) ([]Record, error) {
	tx := db.GetTxFromContext(ctx, q.db).WithContext(ctx).
		Model(&models.AuditLogModel{}).
		Where("tenant_id = ?", tenantID)

	if filter.EntityType != "" {
		tx = tx.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		tx = tx.Where("entity_id = ?", filter.EntityID)
	}
	if filter.ActorID != "" {
		tx = tx.Where("actor_id = ?", filter.ActorID)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var rows []models.AuditLogModel
	if err := tx.Order("occurred_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			TenantID:       row.TenantID,
			ActorID:        row.ActorID,
			Action:         row.Action,
			EntityType:     row.EntityType,
			EntityID:       row.EntityID,
			BeforeSnapshot: json.RawMessage(row.BeforeSnapshot),
			AfterSnapshot:  json.RawMessage(row.AfterSnapshot),
			OccurredAt:     row.OccurredAt,
		})
	}
	return records, nil
}
