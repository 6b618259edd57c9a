package core

import "sync/atomic"

// OnceFlag guards an action that must run at most once. The zero value is
// ready to use.
type OnceFlag struct {
	called atomic.Bool
}

// Called reports whether some CallOnce has claimed the flag.
func (f *OnceFlag) Called() bool {
	return f.called.Load()
}

// CallOnce runs fn if, and only if, the caller is the first to claim flag.
// It reports whether fn was run by this call.
//
// Unlike sync.Once, losing callers return immediately; they do not wait for
// the winner's fn to finish.
func CallOnce(flag *OnceFlag, fn func()) bool {
	if !flag.called.CompareAndSwap(false, true) {
		return false
	}
	fn()
	return true
}
