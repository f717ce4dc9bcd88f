package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"a11y-hq/lumen/pkg/config"
	"a11y-hq/lumen/pkg/rule"
	"a11y-hq/lumen/pkg/rule/library"
	"a11y-hq/lumen/pkg/rulepack"
	"a11y-hq/lumen/pkg/telemetry/metrics"
)

const linkPack = `rules:
  - id: HyperlinkHasName
    description: Hyperlinks must have a name
    condition: {control_type: Hyperlink}
    pass_when: {property: {name: Name, matches: "\\S"}}
`

func writePack(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func compile(t *testing.T, src string) *rulepack.Compiled {
	t.Helper()
	pack, err := rulepack.Parse([]byte(src), "pack.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	c, err := rulepack.Compile([]*rulepack.Pack{pack})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return c
}

func TestBuild(t *testing.T) {
	builtins := len(library.Definitions())

	tests := []struct {
		name      string
		opts      BuildOptions
		pack      string
		wantLen   int
		wantIDs   []string
		wantUnkwn []string
	}{
		{"builtin only", BuildOptions{Builtin: true}, "", builtins, []string{library.NameNotNull}, nil},
		{"pack only", BuildOptions{}, linkPack, 1, []string{"HyperlinkHasName"}, nil},
		{"both", BuildOptions{Builtin: true}, linkPack, builtins + 1, []string{"HyperlinkHasName", library.NameNotNull}, nil},
		{
			"disabled",
			BuildOptions{Builtin: true, Disabled: []string{library.NameNotNull, "Nope"}},
			"",
			builtins - 1,
			nil,
			[]string{"Nope"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var compiled *rulepack.Compiled
			if tt.pack != "" {
				compiled = compile(t, tt.pack)
			}

			res, err := Build(tt.opts, compiled)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if res.Set.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", res.Set.Len(), tt.wantLen)
			}
			for _, id := range tt.wantIDs {
				if _, ok := res.Set.Get(id); !ok {
					t.Errorf("Get(%q) missing", id)
				}
			}
			if strings.Join(res.UnknownDisabled, ",") != strings.Join(tt.wantUnkwn, ",") {
				t.Errorf("UnknownDisabled = %v, want %v", res.UnknownDisabled, tt.wantUnkwn)
			}
		})
	}
}

func TestBuild_PackConflictsWithBuiltin(t *testing.T) {
	compiled := compile(t, "rules:\n  - id: "+library.NameNotNull+"\n    condition: true\n")

	_, err := Build(BuildOptions{Builtin: true}, compiled)
	var packErr *rulepack.PackError
	if !errors.As(err, &packErr) || !errors.Is(err, rule.ErrDuplicateDeclaration) {
		t.Errorf("Build() error = %v, want PackError wrapping ErrDuplicateDeclaration", err)
	}
}

func TestSet(t *testing.T) {
	res, err := Build(BuildOptions{Builtin: true}, compile(t, linkPack))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	set := res.Set

	ids := set.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("IDs() not sorted: %v", ids)
		}
	}

	entry, ok := set.Entry("HyperlinkHasName")
	if !ok || entry.Origin != SourcePack || entry.File != "pack.yaml" {
		t.Errorf("Entry() = %+v, %v", entry, ok)
	}

	counts := set.CountByOrigin()
	if counts[SourcePack] != 1 || counts[SourceBuiltin] != set.Len()-1 {
		t.Errorf("CountByOrigin() = %v", counts)
	}

	if len(set.Version()) != 16 {
		t.Errorf("Version() = %q, want 16 hex chars", set.Version())
	}

	again, err := Build(BuildOptions{Builtin: true}, compile(t, linkPack))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if again.Set.Version() != set.Version() {
		t.Error("Version() differs for identical rule sets")
	}

	builtinOnly := set.Filter(func(e Entry) bool { return e.Origin == SourceBuiltin })
	if builtinOnly.Len() != set.Len()-1 || builtinOnly.Version() == set.Version() {
		t.Errorf("Filter() len = %d version = %s", builtinOnly.Len(), builtinOnly.Version())
	}

	if EmptySet().Len() != 0 {
		t.Error("EmptySet() not empty")
	}
}

func TestManager_LoadAndReload(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "links.yaml", linkPack)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true, Namespace: "test"}, reg)

	m, err := NewManager(&config.RulesConfig{Builtin: true, Packs: []string{dir}}, nil, collector)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if m.Snapshot().Len() != 0 {
		t.Fatal("rules active before Load")
	}

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	before := m.Snapshot()
	if _, ok := m.Get("HyperlinkHasName"); !ok {
		t.Fatal("pack rule not loaded")
	}

	// A broken pack is rejected and the previous set stays active.
	writePack(t, dir, "broken.yaml", "rules:\n  - id: Broken\n")
	err = m.Reload(context.Background(), TriggerManual)
	var packErr *rulepack.PackError
	if !errors.As(err, &packErr) {
		t.Fatalf("Reload() error = %v, want *rulepack.PackError", err)
	}
	if m.Snapshot() != before {
		t.Error("failed reload replaced the active set")
	}
	if st := m.Status(); st.LastError == "" || st.Version != before.Version() {
		t.Errorf("Status() = %+v", st)
	}

	writePack(t, dir, "broken.yaml", "rules:\n  - id: Fixed\n    condition: true\n")
	if err := m.Reload(context.Background(), TriggerManual); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if m.Snapshot().Version() == before.Version() {
		t.Error("Version() unchanged after adding a rule")
	}
	if st := m.Status(); st.LastError != "" || st.ByOrigin[SourcePack] != 2 {
		t.Errorf("Status() = %+v", st)
	}

	want := fmt.Sprintf(`
# HELP test_rules_loaded Number of ready rules by source
# TYPE test_rules_loaded gauge
test_rules_loaded{source="builtin"} %d
test_rules_loaded{source="pack"} 2
`, len(library.Definitions()))
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "test_rules_loaded"); err != nil {
		t.Errorf("rules_loaded mismatch: %v", err)
	}
}

func TestManager_Validate(t *testing.T) {
	dir := t.TempDir()
	writePack(t, dir, "links.yaml", linkPack)

	m, err := NewManager(&config.RulesConfig{Packs: []string{dir}}, nil, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	res, err := m.Validate(context.Background())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if res.Set.Len() != 1 {
		t.Errorf("Validate() Len = %d, want 1", res.Set.Len())
	}
	if m.Snapshot().Len() != 0 {
		t.Error("Validate() activated rules")
	}
}

func TestManager_Watch(t *testing.T) {
	t.Run("nothing to watch", func(t *testing.T) {
		m, err := NewManager(&config.RulesConfig{Builtin: true}, nil, nil)
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}
		if err := m.Watch(context.Background()); !errors.Is(err, ErrNothingToWatch) {
			t.Errorf("Watch() error = %v, want ErrNothingToWatch", err)
		}
	})

	t.Run("reloads on change", func(t *testing.T) {
		dir := t.TempDir()
		writePack(t, dir, "links.yaml", linkPack)

		m, err := NewManager(&config.RulesConfig{
			Packs:         []string{dir},
			Watch:         true,
			WatchDebounce: 20 * time.Millisecond,
		}, nil, nil)
		if err != nil {
			t.Fatalf("NewManager() error = %v", err)
		}
		if err := m.Load(context.Background()); err != nil {
			t.Fatalf("Load() error = %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- m.Watch(ctx) }()
		time.Sleep(100 * time.Millisecond)

		if err := m.Watch(ctx); !errors.Is(err, ErrWatchRunning) {
			t.Errorf("second Watch() error = %v, want ErrWatchRunning", err)
		}

		writePack(t, dir, "more.yaml", "rules:\n  - id: More\n    condition: true\n")

		deadline := time.Now().Add(3 * time.Second)
		for m.Snapshot().Len() != 2 && time.Now().Before(deadline) {
			time.Sleep(20 * time.Millisecond)
		}
		if m.Snapshot().Len() != 2 {
			t.Errorf("Len() = %d after change, want 2", m.Snapshot().Len())
		}

		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch() error = %v", err)
		}
		_ = m.Close()
	})
}
