// Package pipeline provides the fetch-and-decode pipeline.
//
// A fetch sends one request through a Transport and delivers exactly one
// Outcome to a callback, or nothing at all when the caller gave up first.
//
// # Stages
//
// Every call runs the same stages in the same order:
//
//	transport completes        (transport goroutine)
//	  → resolve config         (retained snapshot or live config + scope check)
//	  → hop to DecodeOn        (always an asynchronous hand-off)
//	  → Classifier.Extract     (success bytes or typed error)
//	  → Decoder.Decode         (skipped when Extract failed)
//	  → hop to DeliverOn       (always an asynchronous hand-off)
//	  → callback(outcome)      (once)
//
// # Retention
//
// With Config.Retain unset the pipeline only borrows the caller's config:
// before each hop it checks Config.Owner and stops silently once the owner
// has been released. With Retain set, the config is copied when Fetch is
// called and the owner is never consulted.
//
// Cancelling the context before the transport completes also ends the call
// silently. The pipeline never logs and never synthesizes errors of its own;
// every failure reaches the callback through the Outcome.
package pipeline
