package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/focus_mon/internal/domain"
)

// Blocker implements domain.BlockAction.
// It navigates back first, then presents the interruption screen.
type Blocker struct {
	presenter domain.Presenter
	journal   domain.BlockJournal
	clock     domain.Clock
	logger    *zap.Logger
}

// NewBlocker creates a blocker without a journal.
func NewBlocker(p domain.Presenter, logger *zap.Logger) *Blocker {
	return &Blocker{
		presenter: p,
		journal:   nil, // Set via NewBlockerWithJournal
		clock:     domain.SystemClock{},
		logger:    logger,
	}
}

// NewBlockerWithJournal creates a blocker that records every executed block.
func NewBlockerWithJournal(p domain.Presenter, j domain.BlockJournal, clock domain.Clock, logger *zap.Logger) *Blocker {
	return &Blocker{
		presenter: p,
		journal:   j,
		clock:     clock,
		logger:    logger,
	}
}

// Execute dismisses the current surface and shows the interruption.
// A failed back is not fatal: the interruption is presented regardless.
func (b *Blocker) Execute(ctx context.Context, d domain.BlockDecision) {
	b.logger.Info("blocking",
		zap.String("app", d.AppID),
		zap.String("target", d.Target),
		zap.String("category", string(d.Category)),
		zap.String("address", d.Address))

	if err := b.presenter.Back(ctx); err != nil {
		b.logger.Debug("back navigation failed", zap.Error(err))
	}

	if err := b.presenter.Present(ctx, d.Category); err != nil {
		b.logger.Error("failed to present block screen",
			zap.String("category", string(d.Category)),
			zap.Error(err))
	}

	if b.journal == nil {
		return
	}
	rec := domain.BlockRecord{
		Target:    d.Target,
		Category:  d.Category,
		AppID:     d.AppID,
		Address:   d.Address,
		BlockedAt: b.clock.Now(),
	}
	if err := b.journal.Record(rec); err != nil {
		b.logger.Warn("failed to record block", zap.Error(err))
	}
}

// Ensure Blocker implements domain.BlockAction.
var _ domain.BlockAction = (*Blocker)(nil)
