package database

import sq "github.com/Masterminds/squirrel"

// PSQL - squirrel builder с postgres-плейсхолдерами.
var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	EventsTable  = "events"
	InvitesTable = "invites"
)
