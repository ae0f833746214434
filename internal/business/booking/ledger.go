package booking

import (
	"github.com/practicehq/calendar-backend/internal/model"
)

// BillableAmount is the payable amount in major units of the stated currency.
type BillableAmount struct {
	Amount   float64
	Currency string
}

// Ledger is a read-only view over a public booking record. correlatedClientID
// comes from the external client service; the ledger only reports whether a
// link id is present, not whether the referenced entity still exists.
type Ledger struct {
	record             *model.BookingRecord
	correlatedClientID string
}

func NewLedger(record *model.BookingRecord, correlatedClientID string) *Ledger {
	return &Ledger{record: record, correlatedClientID: correlatedClientID}
}

func (l *Ledger) IsClientLinked() bool {
	return l.correlatedClientID != ""
}

func (l *Ledger) IsProjectLinked() bool {
	return l.record.LinkedProjectID != ""
}

// BillableAmount returns nil when no payment is required.
func (l *Ledger) BillableAmount() *BillableAmount {
	if l.record.PaymentStatus == model.PaymentNotRequired {
		return nil
	}
	return &BillableAmount{
		Amount:   float64(l.record.PaymentAmountMinorUnit) / 100,
		Currency: l.record.PaymentCurrency,
	}
}
