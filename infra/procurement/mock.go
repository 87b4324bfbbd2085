package procurement

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/urbanpulse/sentinel/core/dispatch"
)

// Mock confirms every order locally, for demos and tests without a live
// supply-chain system. PO identifiers follow the PO-YYYYMMDD-HHMMSS demo
// convention.
type Mock struct {
	clock clockwork.Clock
}

// NewMock creates a mock confirmer.
func NewMock() *Mock {
	return &Mock{clock: clockwork.NewRealClock()}
}

// WithClock swaps the time source used for PO identifiers.
func (m *Mock) WithClock(c clockwork.Clock) *Mock {
	m.clock = c
	return m
}

// ConfirmOrder acknowledges the order immediately.
func (m *Mock) ConfirmOrder(_ context.Context, qty int) (dispatch.Confirmation, error) {
	_ = qty
	return dispatch.Confirmation{
		POID:   "PO-" + m.clock.Now().Format("20060102-150405"),
		Status: "confirmed",
	}, nil
}
