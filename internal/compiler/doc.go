// Package compiler turns marble diagrams into timelines and subscription logs.
//
// # Value diagrams
//
// Each character occupies one frame slot of FrameTimeFactor time units:
//
//	'-' or ' '    idle frame
//	'(' ')'       group: every character inside shares the frame of "(",
//	              and the group as a whole occupies one slot
//	'|'           complete
//	'#'           error (Options.ErrorValue, default "error")
//	'^'           subscription origin: shifts all frames so ^ is frame 0
//	other         next(value), resolved through Options.Values
//
// "!" is illegal in a value diagram.
//
// # Subscription diagrams
//
// Only -, space, ( ), ^ and ! are allowed. ^ and ! may each appear once,
// and ! may not come before ^.
//
//	log, err := compiler.ParseSubscriptionDiagram("-^--!")
//	// log == ir.SubscriptionLog{Subscribed: 10, Unsubscribed: 40}
//
// All parse functions are pure: repeated calls with the same input return
// identical results.
package compiler
