// Package recovery implements the intelligent restore: it diagnoses an error
// log, gathers facts about the last stable backup, decides between a direct
// restore and a migrated restore, and executes the plan.
//
// A run moves through these states:
//
//	start -> diagnosing -> gathering_intelligence -> planning
//	      -> direct_executing | migration_executing -> finished
//
// with failed reachable whenever a required fact, the migration path or the
// execution itself is missing. Quick fixes found while diagnosing are shown to
// the operator but never applied and never stop the run.
//
// Every run gets a ULID, reported in logs, in the Report and by the Tracker.
package recovery
