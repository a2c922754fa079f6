// Package repositories implements SQLite persistence for the local play history.
//
// [PlayHistoryRepository] appends a [models.PlayRecord] whenever the player reports a new current
// track and lists records newest first. It backs the Library view and the history command.
//
// Queries are plain SQL against the schema created by [shared.RunMigrations].
package repositories
