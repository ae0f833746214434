package metadata

import (
	"testing"

	"github.com/practicehq/calendar-backend/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		bag  model.Properties
		want model.EventKind
	}{
		{name: "nil bag", bag: nil, want: model.KindStandard},
		{name: "empty bag", bag: model.Properties{}, want: model.KindStandard},
		{
			name: "canonical key",
			bag:  model.Properties{PropEventType: "SMS_BROADCAST"},
			want: model.KindSMSBroadcast,
		},
		{
			name: "legacy key",
			bag:  model.Properties{legacyEventType: "PUBLIC_BOOKING"},
			want: model.KindPublicBooking,
		},
		{
			name: "canonical wins over legacy",
			bag:  model.Properties{PropEventType: "ICAL_INVITE", legacyEventType: "STANDARD"},
			want: model.KindICalInvite,
		},
		{
			name: "unrecognized canonical falls back to legacy",
			bag:  model.Properties{PropEventType: "???", legacyEventType: "EMAIL_BROADCAST"},
			want: model.KindEmailBroadcast,
		},
		{
			name: "unrecognized everywhere defaults",
			bag:  model.Properties{PropEventType: "???", legacyEventType: "??"},
			want: model.KindStandard,
		},
		{
			name: "non-string value defaults",
			bag:  model.Properties{PropEventType: 3},
			want: model.KindStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.bag); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
