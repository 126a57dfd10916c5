package idle

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig reports a coordinator that cannot be built from its config.
var ErrInvalidConfig = errors.New("invalid idle tracker config")

// ScanError wraps anything that went wrong during one sweep pass. It is
// reported and swallowed; the sweeper keeps its schedule.
type ScanError struct {
	Pass  int
	Panic any
	Err   error
}

func (e *ScanError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("sweep pass %d panicked: %v", e.Pass, e.Panic)
	}
	return fmt.Sprintf("sweep pass %d: %v", e.Pass, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
