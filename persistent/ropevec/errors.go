package ropevec

import (
	"fmt"
	"runtime"
)

// IndexFail is returned by Get, Insert, Update, Remove, SplitOff and their
// _Mut siblings when an offset falls outside the admissible range. It
// carries the source location of the call site that raised it (mirroring
// the file:line prefix the original Rust implementation attaches via its
// err_at! macro) plus a human-readable message.
type IndexFail struct {
	Location string
	Msg      string
}

func (e *IndexFail) Error() string {
	return fmt.Sprintf("%s IndexFail: %s", e.Location, e.Msg)
}

// indexFail builds an IndexFail rooted at its caller and traces it at error
// level before returning, mirroring err_at!'s log::error! call.
func indexFail(format string, args ...interface{}) error {
	loc := "unknown"
	if _, file, line, ok := runtime.Caller(1); ok {
		loc = fmt.Sprintf("%s:%d", file, line)
	}
	err := &IndexFail{Location: loc, Msg: fmt.Sprintf(format, args...)}
	tracer().Errorf("%s", err)
	return err
}

// assertThat panics with a formatted message if `that` is false. Used for
// invariant breaches (I1–I4 of the tree invariants) and other programming
// faults, which are not recoverable errors.
func assertThat(that bool, msg string, args ...interface{}) {
	if !that {
		panic(fmt.Sprintf("ropevec: "+msg, args...))
	}
}
