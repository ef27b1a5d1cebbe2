// Package script runs Lua pre-annotation rules over a session.
//
// A rule script defines a global function annotate(text). It is called once
// per frame with that frame's text and records spans through the anno module:
//
//	function annotate(text)
//	  local s, e = anno.find("error")
//	  while s do
//	    anno.select(s, e)
//	    s, e = anno.find("error", e)
//	  end
//	end
//
// All anno offsets are 0-based character offsets with an exclusive stop,
// the same offsets stored in checkpoints. Lua string functions work on bytes;
// use anno.find rather than string.find to obtain offsets. anno.find matches
// its needle literally; Lua pattern characters such as "." or "%d" have no
// special meaning.
//
// The anno module:
//
//	anno.select(start, stop)    select [start, stop)
//	anno.deselect(start, stop)  deselect [start, stop)
//	anno.find(needle [, init])  start, stop of the next occurrence at or after init, or nil
//	anno.text()                 the frame text
//	anno.len()                  the frame length in characters
//	anno.frame()                the 0-based frame index
//	anno.count()                the number of frames
//
// Only the base, table, string and math libraries are available.
package script
