package core

import "fmt"

// Fault is a logic fault: corrupted RNG or simulation state that must halt the process
// It is raised with panic and never recovered by game code
type Fault struct {
	Msg    string
	Detail string
}

func (f *Fault) Error() string {
	if f.Detail == "" {
		return f.Msg
	}
	return fmt.Sprintf("%s: %s", f.Msg, f.Detail)
}

// Fatal halts the calling goroutine with a Fault
// Goroutines started with Go hand the fault to the crash handler, which exits the process
func Fatal(msg, detail string) {
	panic(&Fault{Msg: msg, Detail: detail})
}

// Recover converts a panic carrying a Fault back into a value
// Intended for tests asserting the fatal path; other panics are re-raised
func Recover(r any) *Fault {
	if r == nil {
		return nil
	}
	if f, ok := r.(*Fault); ok {
		return f
	}
	panic(r)
}
