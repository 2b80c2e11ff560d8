package resilience

import (
	"context"
	"testing"
	"time"
)

func TestDefaultTimeoutConfig(t *testing.T) {
	config := DefaultTimeoutConfig()

	// Verify timeout hierarchy is correctly ordered
	if config.Command <= config.PanelCall {
		t.Errorf("Command (%v) must be > PanelCall (%v)", config.Command, config.PanelCall)
	}

	if config.Command <= config.SecretLookup {
		t.Errorf("Command (%v) must be > SecretLookup (%v)", config.Command, config.SecretLookup)
	}

	// Verify production values
	if config.Command != 60*time.Second {
		t.Errorf("Expected Command = 60s, got %v", config.Command)
	}

	if config.PanelCall != 45*time.Second {
		t.Errorf("Expected PanelCall = 45s, got %v", config.PanelCall)
	}
}

func TestTestTimeoutConfig(t *testing.T) {
	config := TestTimeoutConfig()

	if config.Command >= 10*time.Second {
		t.Errorf("Test timeouts should be < 10s, got %v", config.Command)
	}

	if config.Command <= config.PanelCall {
		t.Errorf("Command (%v) must be > PanelCall (%v)", config.Command, config.PanelCall)
	}
}

func TestWithPanelCall(t *testing.T) {
	base := DefaultTimeoutConfig()

	same := base.WithPanelCall(0)
	if same != base {
		t.Errorf("non-positive override should return the same config")
	}

	shorter := base.WithPanelCall(10 * time.Second)
	if shorter.PanelCall != 10*time.Second {
		t.Errorf("Expected PanelCall = 10s, got %v", shorter.PanelCall)
	}
	if shorter.Command != base.Command {
		t.Errorf("Command should stay %v, got %v", base.Command, shorter.Command)
	}

	longer := base.WithPanelCall(2 * time.Minute)
	if longer.Command <= longer.PanelCall+longer.SecretLookup {
		t.Errorf("Command (%v) must outlive PanelCall (%v) + SecretLookup (%v)", longer.Command, longer.PanelCall, longer.SecretLookup)
	}
	if base.PanelCall != 45*time.Second {
		t.Errorf("override must not mutate the receiver, got %v", base.PanelCall)
	}
}

func TestPanelCallContext(t *testing.T) {
	config := DefaultTimeoutConfig()

	ctx, cancel := config.PanelCallContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("PanelCallContext should have deadline")
	}

	expectedDeadline := time.Now().Add(config.PanelCall)
	diff := deadline.Sub(expectedDeadline).Abs()
	if diff > 100*time.Millisecond {
		t.Errorf("Deadline diff too large: %v", diff)
	}
}

func TestNestedContexts(t *testing.T) {
	config := TestTimeoutConfig()

	cmdCtx, cancelCmd := config.CommandContext(context.Background())
	defer cancelCmd()

	secretCtx, cancelSecret := config.SecretLookupContext(cmdCtx)
	defer cancelSecret()

	cmdDeadline, _ := cmdCtx.Deadline()
	secretDeadline, _ := secretCtx.Deadline()
	if !secretDeadline.Before(cmdDeadline) {
		t.Errorf("secret lookup deadline %v should be before command deadline %v", secretDeadline, cmdDeadline)
	}

	cancelCmd()
	<-secretCtx.Done()
	if secretCtx.Err() != context.Canceled {
		t.Errorf("expected child to be canceled with its parent, got %v", secretCtx.Err())
	}
}
