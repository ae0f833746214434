package broadcast

import (
	"github.com/practicehq/calendar-backend/internal/model"
	"github.com/practicehq/calendar-backend/internal/pkg/validator"
)

// ValidatedSpec is the normalized spec handed to the dispatcher. Status and
// SentCount are owned by the dispatcher after this point.
type ValidatedSpec struct {
	model.BroadcastSpec
	RecipientCount int
}

// Validate checks a broadcast spec against its kind and computes the
// recipient count. Attendee emails and client ids are different identity
// spaces, so duplicates across the two sets are left to the dispatcher.
func Validate(kind model.EventKind, spec *model.BroadcastSpec, attendees []*model.Attendee) (*ValidatedSpec, error) {
	v := validator.New()

	v.Check(kind.IncludesSMS() || kind.IncludesEmail(), "kind", "must be a broadcast kind")
	if kind.IncludesSMS() {
		v.Check(spec.SMSContent != "", "smsContent", "must be provided for SMS broadcasts")
	}
	if kind.IncludesEmail() {
		v.Check(spec.EmailSubject != "", "emailSubject", "must be provided for email broadcasts")
	}

	if !v.Valid() {
		return nil, &model.ValidationError{Fields: v.Errors}
	}

	validated := &ValidatedSpec{
		BroadcastSpec:  *spec,
		RecipientCount: len(attendees) + len(spec.SelectedClientIDs),
	}
	validated.Status = model.BroadcastPending
	validated.SentCount = 0
	return validated, nil
}
