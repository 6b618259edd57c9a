// Package goid reports the id of the running goroutine.
package goid

import (
	"runtime"
)

// Get returns the id of the calling goroutine, parsed from the
// "goroutine 123 [running]:" header of its stack trace.
func Get() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]

	var id int64
	for i := len("goroutine "); i < len(b); i++ {
		if b[i] >= '0' && b[i] <= '9' {
			id = id*10 + int64(b[i]-'0')
		} else {
			break
		}
	}
	return id
}
