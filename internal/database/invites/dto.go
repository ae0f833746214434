package invites

import (
	"time"

	"github.com/practicehq/calendar-backend/internal/model"
)

type inviteDTO struct {
	EventID        int64
	UID            string
	Method         string
	OrganizerEmail string
	OrganizerName  string
	ResponseStatus string
	RespondedBy    string
	Sequence       int64
	ReceivedAt     time.Time
}

func mapToInvite(dto *inviteDTO) *model.ICalInviteState {
	return &model.ICalInviteState{
		EventID:        dto.EventID,
		UID:            dto.UID,
		Method:         model.InviteMethod(dto.Method),
		OrganizerEmail: dto.OrganizerEmail,
		OrganizerName:  dto.OrganizerName,
		ResponseStatus: model.ResponseStatus(dto.ResponseStatus),
		RespondedBy:    dto.RespondedBy,
		Sequence:       dto.Sequence,
		ReceivedAt:     dto.ReceivedAt,
	}
}
