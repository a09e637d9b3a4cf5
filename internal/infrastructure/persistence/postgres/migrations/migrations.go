// Package migrations embeds the decision engine schema.
package migrations

import "embed"

// FS holds the golang-migrate up/down scripts.
//
//go:embed *.sql
var FS embed.FS
