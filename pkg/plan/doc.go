// Package plan describes work plans and schedules them into batches.
//
// A plan lists steps and, for each step, the steps it needs. Plans are
// written in TOML or JSON:
//
//	name = "release"
//
//	[[steps]]
//	id = "schema"
//	command = "migrate up"
//
//	[[steps]]
//	id = "backfill"
//	after = ["schema"]
//
//	[[steps]]
//	id = "reindex"
//	  [[steps.needs]]
//	  step = "backfill"
//	  boundary = true
//	  reason = "index build locks the table"
//
// [Build] turns a plan into a [Schedule]. Dependencies flagged boundary
// split batches when [Options].Batching is set. Dependencies flagged weak
// may be dropped to resolve a cycle when [Options].BreakWeak is set; the
// dropped links are listed in [Schedule].Broken.
//
// Steps that become ready at the same time run in descending priority,
// then by ID, so a schedule only changes when the plan does.
package plan
