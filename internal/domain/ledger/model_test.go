package ledger

import (
	"testing"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
)

func TestNewMovement(t *testing.T) {
	productID := id.New()

	tests := []struct {
		name    string
		kind    Kind
		before  int64
		after   int64
		wantErr bool
	}{
		{"inbound increase", KindInbound, 10, 15, false},
		{"outbound decrease", KindOutbound, 15, 10, false},
		{"adjustment down", KindAdjustment, 7, 0, false},
		{"adjustment up", KindAdjustment, 0, 7, false},
		{"inbound that decreases", KindInbound, 15, 10, true},
		{"outbound that increases", KindOutbound, 10, 15, true},
		{"zero delta", KindInbound, 10, 10, true},
		{"negative after", KindOutbound, 2, -3, true},
		{"unknown kind", Kind("transfer"), 10, 15, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMovement(productID, tt.kind, tt.before, tt.after, "", nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got movement %+v", m)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantDelta := tt.after - tt.before
			if wantDelta < 0 {
				wantDelta = -wantDelta
			}
			if m.Quantity != wantDelta {
				t.Errorf("delta=%d, expected %d", m.Quantity, wantDelta)
			}
			if m.QuantityBefore != tt.before || m.QuantityAfter != tt.after {
				t.Errorf("before/after mismatch: %+v", m)
			}
			if id.IsNil(m.ID) {
				t.Error("movement id not generated")
			}
		})
	}
}

func TestNewMovement_RequiresProduct(t *testing.T) {
	_, err := NewMovement(id.Nil(), KindInbound, 0, 5, "", nil)
	if !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
