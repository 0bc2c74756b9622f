// Package migrations embeds the schema migration scripts shipped with the
// server binary. Filenames carry zero-padded sequence prefixes because
// lexicographic order is the application order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
