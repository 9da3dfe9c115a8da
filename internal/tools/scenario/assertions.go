package scenario

import (
	"fmt"
	"log"
)

// AssertionMode controls how expectation failures are handled.
type AssertionMode int

const (
	// AssertionStrict stops the scenario on the first mismatch.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs mismatches and keeps going.
	AssertionLogOnly
)

// Assertions reports expectation mismatches according to Mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
}

// Failf returns an error in strict mode; otherwise it logs and returns nil.
func (a Assertions) Failf(format string, args ...any) error {
	if a.Mode == AssertionLogOnly {
		if a.Logger != nil {
			a.Logger.Printf("expectation failed: "+format, args...)
		}
		return nil
	}
	return fmt.Errorf(format, args...)
}
