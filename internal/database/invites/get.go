package invites

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/practicehq/calendar-backend/internal/database"
	"github.com/practicehq/calendar-backend/internal/model"
)

func (*Repository) GetInviteByEventID(ctx context.Context, q database.Queryable, eventID int64) (*model.ICalInviteState, error) {
	return getInvite(ctx, q, sq.Eq{"event_id": eventID})
}

func (*Repository) GetInviteByUID(ctx context.Context, q database.Queryable, uid string) (*model.ICalInviteState, error) {
	return getInvite(ctx, q, sq.Eq{"uid": uid})
}

func getInvite(ctx context.Context, q database.Queryable, where sq.Eq) (*model.ICalInviteState, error) {
	qb := baseQuery.Where(where)

	dto := &inviteDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	return mapToInvite(dto), nil
}
