package dispatcher

import (
	"fmt"
	"strconv"

	"github.com/practicehq/calendar-backend/internal/model"
)

func eventIDOf(event *model.Event) (int64, error) {
	id, err := strconv.ParseInt(event.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse event id %q: %w", event.ID, err)
	}
	return id, nil
}
