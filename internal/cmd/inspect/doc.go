// Package inspect implements the CLI commands for examining local sapling
// storage: health checks, aux metadata store dumps, and changeset lookups.
package inspect
