// Package store provides SQLite-backed durable storage for the simulation.
//
// Tables:
//   - release_types: categories of economic releases (GDP, NFP, CPI, ...)
//   - economic_releases: scheduled releases with consensus/actual values
//   - macro_events: unscheduled macro/geopolitical headlines
//   - macro_variables_history: append-only log of macro states
//   - narratives: generated commentary tied to releases/events
//
// The history table is strictly append-only: its most recent entry (by
// timestamp) is the authoritative current macro state, and nothing in this
// package updates or deletes history rows. The store implements
// macro.HistoryStore and is the event source for timeline construction.
//
// Timestamps are stored as RFC 3339 UTC text, so lexicographic ordering in
// SQL matches chronological ordering.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
