// Package migrations embeds the goose SQL migrations for the policy ledger.
// The platform's own tables (job_postings, job_applications) are managed by
// the platform's migration pipeline, not here.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
