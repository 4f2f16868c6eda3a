package engine

import (
	"context"
	"time"

	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/models"
)

// Action is a per-item operation a listing offers.
type Action string

const (
	// ActionApply applies the signed-in candidate to an offer.
	ActionApply Action = "apply"
	// ActionConsume spends one unit of the organization's plan to unlock a candidate.
	ActionConsume Action = "consume"
)

// ActionFunc performs action on item against the backend.
type ActionFunc func(ctx context.Context, action Action, item models.ListingItem) error

// ItemActions tells which actions the selected item offers right now.
type ItemActions struct {
	Apply   bool
	Consume bool
	// Pending is set while an action on the item is in flight.
	Pending bool
	// Done is set once the item was applied to or unlocked.
	Done bool
}

func (e *Engine) selectItem(id int64) bool {
	if id == e.selected {
		return false
	}
	if id != 0 {
		if _, ok := e.findItem(id); !ok {
			return false
		}
	}
	e.selected = id
	return true
}

// startAction runs action on the item with the given id, or on the selected
// item when id is 0. It is refused when the item does not offer it.
func (e *Engine) startAction(action Action, id int64) bool {
	if id == 0 {
		id = e.selected
	}
	item, ok := e.findItem(id)
	if !ok {
		return false
	}
	allowed := e.actionsFor(item)
	if (action == ActionApply && !allowed.Apply) || (action == ActionConsume && !allowed.Consume) {
		e.logger.Debug("item action refused", map[string]interface{}{
			"action": string(action),
			"itemId": id,
		})
		return false
	}

	e.pending[id] = action
	fn, ctx := e.actionFn, e.runCtx
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := fn(ctx, action, item)
		e.post(actionDone{action: action, id: id, err: err})
	}()
	return true
}

func (e *Engine) finishAction(ev actionDone) {
	delete(e.pending, ev.id)
	if ev.err != nil {
		notice := e.errors.Handle(e.listing, string(ev.action), ev.err)
		e.notice = &notice
		return
	}

	e.doneIDs[ev.id] = true
	message := "Application sent"
	if ev.action == ActionConsume {
		message = "Candidate unlocked"
		// the plan balance changed
		e.loadPayment()
	}
	e.logger.Info("item action completed", map[string]interface{}{
		"action": string(ev.action),
		"itemId": ev.id,
	})
	e.notice = &apperrors.Notice{Level: apperrors.NoticeInfo, Message: message, At: time.Now().UTC()}
}

// actionsFor derives the enabled actions from the item's status flag, the
// listing's configured endpoints and, for consume, the latest payment.
func (e *Engine) actionsFor(item models.ListingItem) ItemActions {
	_, busy := e.pending[item.ID]
	a := ItemActions{
		Pending: busy,
		Done:    e.doneIDs[item.ID] || (item.StatusFlag != nil && *item.StatusFlag),
	}
	if e.actionFn == nil || a.Pending || a.Done {
		return a
	}
	switch e.cfg.Kind {
	case models.KindOffers:
		a.Apply = e.cfg.ApplyPath != "" && !e.cfg.Public
	case models.KindCandidates:
		a.Consume = e.cfg.ConsumePath != "" && e.payment.CanConsume()
	}
	return a
}

func (e *Engine) findItem(id int64) (models.ListingItem, bool) {
	if id == 0 {
		return models.ListingItem{}, false
	}
	for _, item := range e.loadedItems() {
		if item.ID == id {
			return item, true
		}
	}
	return models.ListingItem{}, false
}

// markDone shows the local outcome of completed actions until the backend
// reports the flag itself.
func (e *Engine) markDone(items []models.ListingItem) {
	for i := range items {
		if e.doneIDs[items[i].ID] {
			done := true
			items[i].StatusFlag = &done
		}
	}
}
