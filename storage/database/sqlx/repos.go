// Package sqlxrepos implements the domain repositories on top of sqlx,
// building queries with squirrel.
package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
)

// psql builds queries with postgres positional placeholders ($1, $2, ...)
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
