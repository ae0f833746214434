package metadata

import "github.com/practicehq/calendar-backend/internal/model"

// Classify resolves which kind a property bag represents. It reads
// X-EVENT-TYPE, falls back to the legacy eventType key, and defaults to
// STANDARD. Pure and side effect free: every render path calls it.
func Classify(bag model.Properties) model.EventKind {
	if kind, ok := kindFromValue(bag[PropEventType]); ok {
		return kind
	}
	if kind, ok := kindFromValue(bag[legacyEventType]); ok {
		return kind
	}
	return model.KindStandard
}

func kindFromValue(v interface{}) (model.EventKind, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	kind := model.EventKind(s)
	if !kind.Valid() {
		return "", false
	}
	return kind, true
}
