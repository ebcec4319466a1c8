// Package sync implements the three-stage catalog sync pipeline:
// PlaylistSync, TrackSync, and AssociationSync, each with an analyze step
// (pure, returns a plan) and an execute step (applies the plan,
// idempotent given the same plan). Engine drives the three in sequence
// for the combined "all" action and reports progress over a channel for
// non-blocking UI feedback during long-running reference-playlist syncs.
package sync
