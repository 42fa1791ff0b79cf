// Package engine implements the orchestration core: a shared state record, a
// set of pluggable actions, and a loop that selects and runs actions until
// the run is done.
//
// The State record has exactly one owner, the Loop, for the whole run.
// Actions never mutate State; they return an ActionResult and the Loop alone
// merges it. The coarse phase marker is re-derived from the record on every
// pass rather than stored, so it tolerates out-of-order writes.
//
//	loop := engine.NewLoop(reasoner,
//	    engine.WithSearch(searcher, fetcher),
//	)
//	state, err := loop.Run(ctx, "write a CSV parser")
package engine
