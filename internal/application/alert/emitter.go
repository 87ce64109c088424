package alert

import (
	"context"

	"github.com/obrafin/backend/internal/domain/alert"
	"go.uber.org/zap"
)

// Emitter persists alerts best-effort. Failures are logged and swallowed:
// a notification that cannot be written must never roll back the financial
// mutation that produced it.
type Emitter struct {
	repo   alert.Repository
	logger *zap.Logger
}

// NewEmitter creates a new Emitter
func NewEmitter(repo alert.Repository, logger *zap.Logger) *Emitter {
	return &Emitter{repo: repo, logger: logger}
}

// Emit creates an alert immediately. Unless the draft opts out, creation is
// skipped while an unread alert with the same type and entity exists.
func (e *Emitter) Emit(ctx context.Context, d alert.Draft) {
	if !d.SkipDedup && d.EntityID != nil {
		exists, err := e.repo.ExistsUnread(ctx, d.Type, *d.EntityID)
		if err != nil {
			e.logger.Error("alert dedup lookup failed",
				zap.String("type", string(d.Type)),
				zap.Error(err),
			)
			return
		}
		if exists {
			e.logger.Debug("suppressing duplicate alert",
				zap.String("type", string(d.Type)),
				zap.String("entity_id", d.EntityID.String()),
			)
			return
		}
	}

	a := alert.New(d)
	if err := e.repo.Save(ctx, a); err != nil {
		e.logger.Error("failed to persist alert",
			zap.String("type", string(d.Type)),
			zap.String("severity", string(d.Severity)),
			zap.String("title", d.Title),
			zap.Error(err),
		)
		return
	}

	e.logger.Info("alert created",
		zap.String("alert_id", a.ID.String()),
		zap.String("type", string(d.Type)),
		zap.String("severity", string(d.Severity)),
	)
}

// NewBatch returns an empty post-commit batch bound to this emitter
func (e *Emitter) NewBatch() *Batch {
	return &Batch{emitter: e}
}

// Batch collects alert drafts raised inside a transaction. Flush runs only
// after a successful commit, so alerts for rolled-back work never surface,
// while the financial writes never wait on notification I/O.
type Batch struct {
	emitter *Emitter
	drafts  []alert.Draft
}

// Add queues a draft for post-commit emission
func (b *Batch) Add(d alert.Draft) {
	b.drafts = append(b.drafts, d)
}

// Len returns the number of queued drafts
func (b *Batch) Len() int {
	return len(b.drafts)
}

// Flush emits every queued draft and empties the batch
func (b *Batch) Flush(ctx context.Context) {
	for _, d := range b.drafts {
		b.emitter.Emit(ctx, d)
	}
	b.drafts = nil
}
