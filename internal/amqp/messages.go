package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Ledger event types.
const (
	EventContributionRecorded = "goal.contribution_recorded"
	EventGoalReconcile        = "goal.reconcile"
	EventBudgetsInitialized   = "budgets.initialized"
)

// LedgerEvent announces a ledger change. It carries identifiers only; the
// consumer reads current state from the ledger.
type LedgerEvent struct {
	Type        string    `json:"type"`
	UserID      string    `json:"user_id"`
	GoalID      string    `json:"goal_id,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewLedgerEvent(eventType, userID, goalID string, amountCents int64) *LedgerEvent {
	return &LedgerEvent{
		Type:        eventType,
		UserID:      userID,
		GoalID:      goalID,
		AmountCents: amountCents,
		Timestamp:   time.Now().UTC(),
	}
}

// IsGoalEvent reports whether the event asks for a goal total to be recomputed.
func (e *LedgerEvent) IsGoalEvent() bool {
	return e.Type == EventContributionRecorded || e.Type == EventGoalReconcile
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Type == "" || e.UserID == "" {
		return nil, errors.New("ledger event requires type and user_id")
	}
	return &e, nil
}
