package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "Scanning")

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "Scanning:") {
		t.Errorf("output should carry the label: %q", output)
	}
	if !strings.Contains(output, "(4/4)") {
		t.Errorf("Finish() should report completion: %q", output)
	}
}

func TestSimpleProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "")

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if strings.TrimSpace(buf.String()) != "" {
		t.Errorf("zero total should render nothing, got %q", buf.String())
	}
}

func TestSimpleProgress_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "")

	progress.Start(10)
	progress.Error(errors.New("snapshot unreadable"))

	if !strings.Contains(buf.String(), "Error: snapshot unreadable") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSimpleProgress_Concurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf, "")
	progress.Start(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				progress.Update(int64(start*100 + j))
			}
		}(i)
	}
	wg.Wait()
	progress.Finish()

	if buf.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestNopProgress(t *testing.T) {
	var p ProgressReporter = NopProgress{}
	p.Start(3)
	p.Update(1)
	p.Error(errors.New("ignored"))
	p.Finish()
}
