// Package migrations embeds the sqlstore schema for golang-migrate,
// mirroring the teacher's pkg/store/metadata/postgres/migrations embed.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
