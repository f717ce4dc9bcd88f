package cli

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSetupSignalHandler(t *testing.T) {
	ctx, stop := SetupSignalHandler(context.Background())
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled initially")
	default:
	}

	stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("stop() should cancel the context")
	}
}

func TestSetupSignalHandler_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SetupSignalHandler(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("parent cancellation should propagate")
	}
}

func TestWaitForShutdown_ReceivesSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping signal test in short mode")
	}

	sigChan := WaitForShutdown()

	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}

	select {
	case sig := <-sigChan:
		if sig != syscall.SIGTERM {
			t.Errorf("got %v, want SIGTERM", sig)
		}
	case <-time.After(2 * time.Second):
		t.Skip("signal not delivered within timeout")
	}
}
