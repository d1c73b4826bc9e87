// Package engine contains the match rules of Pet Grooming.
//
// ARCHITECTURAL RULE: The Engine never moves anything on its own. Positions
// come in through FrameInput from the physics layer; movement requests,
// teleports and knockbacks go back out through FrameOutput. Every rule
// outcome is recorded in the EventLog, and the frame's change list is
// drained into the output.
//
// One Engine owns one match. Tick must be called from a single goroutine.
package engine
