// Package session owns an ordered collection of annotated text samples
// (frames) and the cursor marking the one under review.
//
// The session guarantees that a frame's edit log is collapsed to its
// normalized form whenever the cursor leaves it and before the session is
// serialized, so a persisted checkpoint only ever holds disjoint, sorted,
// selected intervals for frames that have been visited.
//
// Checkpoint document format:
//
//	{
//	  "head": 1,
//	  "frames": [
//	    {"text": "first sample", "anno": [[0, 5, true]]},
//	    {"text": "second sample", "anno": []}
//	  ]
//	}
//
// Each anno entry is [start, stop, status] with character offsets and an
// exclusive stop. Loading validates structure and offsets but does not
// normalize.
//
// A Session is not safe for concurrent use; a single caller drives it.
package session
