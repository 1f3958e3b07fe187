// Package audit persists audit entries emitted by the application services.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	domainaudit "github.com/custos-grc/custos/internal/domain/audit"
	"github.com/custos-grc/custos/internal/infrastructure/persistence/models"
	"github.com/custos-grc/custos/internal/shared/goroutine"
	"github.com/custos-grc/custos/internal/shared/logger"
)

const (
	emitBufferSize = 256
	writeTimeout   = 5 * time.Second
)

// GormEmitter writes audit entries to the audit_logs table through a buffered
// channel and a single background writer. Emit never blocks the mutating
// operation; when the buffer is full the entry is dropped and counted.
type GormEmitter struct {
	db      *gorm.DB
	entries chan domainaudit.Entry
	logger  logger.Interface

	closeOnce sync.Once
	done      chan struct{}

	droppedMu sync.Mutex
	dropped   uint64
}

// NewGormEmitter creates the emitter and starts its writer goroutine.
func NewGormEmitter(db *gorm.DB, log logger.Interface) *GormEmitter {
	e := &GormEmitter{
		db:      db,
		entries: make(chan domainaudit.Entry, emitBufferSize),
		logger:  log,
		done:    make(chan struct{}),
	}

	goroutine.SafeGo(log, "audit-writer", e.run)
	return e
}

var _ domainaudit.Emitter = (*GormEmitter)(nil)

// Emit implements audit.Emitter.
func (e *GormEmitter) Emit(entry domainaudit.Entry) {
	select {
	case e.entries <- entry:
	default:
		e.droppedMu.Lock()
		e.dropped++
		dropped := e.dropped
		e.droppedMu.Unlock()
		e.logger.Errorw("audit buffer full, entry dropped",
			"action", entry.Action,
			"entity_id", entry.EntityID,
			"dropped_total", dropped,
		)
	}
}

// Close stops accepting entries and drains the buffer before returning.
func (e *GormEmitter) Close() {
	e.closeOnce.Do(func() {
		close(e.entries)
		<-e.done
	})
}

// Dropped returns how many entries were discarded due to a full buffer.
func (e *GormEmitter) Dropped() uint64 {
	e.droppedMu.Lock()
	defer e.droppedMu.Unlock()
	return e.dropped
}

func (e *GormEmitter) run() {
	defer close(e.done)
	for entry := range e.entries {
		e.write(entry)
	}
}

func (e *GormEmitter) write(entry domainaudit.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	model := &models.AuditLogModel{
		TenantID:       entry.TenantID,
		ActorID:        entry.ActorID,
		Action:         entry.Action,
		EntityType:     entry.EntityType,
		EntityID:       entry.EntityID,
		BeforeSnapshot: marshalSnapshot(entry.BeforeSnapshot),
		AfterSnapshot:  marshalSnapshot(entry.AfterSnapshot),
		OccurredAt:     entry.OccurredAt,
	}

	if err := e.db.WithContext(ctx).Create(model).Error; err != nil {
		// The mutation already committed; losing the trail entry is logged
		// loudly but cannot fail the operation retroactively.
		e.logger.Errorw("failed to persist audit entry",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}

func marshalSnapshot(snapshot any) datatypes.JSON {
	if snapshot == nil {
		return nil
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil
	}
	return payload
}
