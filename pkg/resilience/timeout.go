package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines the deadlines the CLI puts around its work.
// The panel client itself never adds a timeout; callers decide.
//
// Timeout Hierarchy (from outermost to innermost):
//
//	Command (60s)
//	  ↓
//	Panel call (45s)      Secret lookup (15s)
//
// Each inner deadline must finish before the command deadline fires so the
// error the user sees names the step that was slow.
type TimeoutConfig struct {
	Command      time.Duration // whole CLI invocation
	PanelCall    time.Duration // one panel API round trip
	SecretLookup time.Duration // fetching API credentials from a secret backend
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Command:      60 * time.Second,
		PanelCall:    45 * time.Second, // createacct can take a while
		SecretLookup: 15 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Command:      5 * time.Second,
		PanelCall:    3 * time.Second,
		SecretLookup: 1 * time.Second,
	}
}

// WithPanelCall overrides the panel call deadline, growing Command if needed
// so the hierarchy still holds. A non-positive d leaves the config unchanged.
func (tc *TimeoutConfig) WithPanelCall(d time.Duration) *TimeoutConfig {
	if d <= 0 {
		return tc
	}
	out := *tc
	out.PanelCall = d
	if out.Command <= d+out.SecretLookup {
		out.Command = d + out.SecretLookup + 5*time.Second
	}
	return &out
}

// CommandContext creates a context bounding a whole CLI command
func (tc *TimeoutConfig) CommandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Command)
}

// PanelCallContext creates a context for one panel API call
func (tc *TimeoutConfig) PanelCallContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.PanelCall)
}

// SecretLookupContext creates a context for a secret backend read
func (tc *TimeoutConfig) SecretLookupContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.SecretLookup)
}
