package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/charlm/internal/config"
	"github.com/verte-zerg/charlm/internal/langmodel"
	"github.com/verte-zerg/charlm/internal/model"
	"github.com/verte-zerg/charlm/internal/store"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	corpusPath := filepath.Join(dir, "corpus.txt")
	if err := os.WriteFile(corpusPath, []byte("abcabc\nabc"), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return corpusPath
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPositionalGenerate(t *testing.T) {
	corpusPath := setupEnv(t)

	out, err := runRoot(t, "2", "ab", "5", "fixed", corpusPath, "--no-history")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	// "abcabc abc": "ab" is always followed by 'c', later steps branch.
	if !strings.HasPrefix(out, "abc") {
		t.Fatalf("unexpected output %q", out)
	}
	if n := len([]rune(strings.TrimSuffix(out, "\n"))); n != 7 {
		t.Fatalf("expected 7 characters, got %d in %q", n, out)
	}

	again, err := runRoot(t, "2", "ab", "5", "fixed", corpusPath, "--no-history")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if again != out {
		t.Fatalf("fixed mode must be reproducible: %q vs %q", out, again)
	}
}

func TestFlagsAndHistory(t *testing.T) {
	corpusPath := setupEnv(t)
	out, err := runRoot(t, "--window", "2", "--initial", "ab", "--length", "1", "--corpus", corpusPath)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out != "abc\n" {
		t.Fatalf("unexpected output %q", out)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()
	runs, err := st.ListRuns(context.Background(), model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Output != "abc" || !runs[0].Seeded || runs[0].Window != 2 {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	hist, err := runRoot(t, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(hist, "Runs: 1 (1 fixed, 0 random)") || !strings.Contains(hist, "Per-Character Output") {
		t.Fatalf("unexpected history output:\n%s", hist)
	}

	top, err := runRoot(t, "history", "--top", "1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(top, "c    100.00%     1    1") {
		t.Fatalf("unexpected history --top output:\n%s", top)
	}
}

func TestConfigFileDefaults(t *testing.T) {
	corpusPath := setupEnv(t)
	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := "[generate]\nwindow = 2\ninitial = \"ab\"\nlength = 1\nhistory = false\ncorpus = \"" + filepath.ToSlash(corpusPath) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := runRoot(t)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out != "abc\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(config.DefaultDBPath()); !os.IsNotExist(err) {
		t.Fatalf("history=false must not create the database")
	}

	// Flags win over the file.
	out, err = runRoot(t, "--length", "0")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out != "ab\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestGenerateErrors(t *testing.T) {
	corpusPath := setupEnv(t)
	cases := [][]string{
		{"2", "ab", "3", "sometimes", corpusPath},
		{"two", "ab", "3", "fixed", corpusPath},
		{"2", "ab", "3"},
		{"--window", "2"},
	}
	for _, args := range cases {
		if _, err := runRoot(t, args...); err == nil {
			t.Fatalf("expected error for args %v", args)
		}
	}

	_, err := runRoot(t, "2", "zz", "3", "fixed", corpusPath, "--no-history")
	if !errors.Is(err, langmodel.ErrUnknownWindow) {
		t.Fatalf("expected unknown window error, got %v", err)
	}
	_, err = runRoot(t, "20", "ab", "3", "fixed", corpusPath, "--no-history")
	if !errors.Is(err, langmodel.ErrInvalidCorpus) {
		t.Fatalf("expected invalid corpus error, got %v", err)
	}
}

func TestGenerateNormalizesInitialLineEndings(t *testing.T) {
	corpusPath := setupEnv(t)
	// The corpus trains as "abcabc abc", where "c " is always followed by 'a'.
	for _, initial := range []string{"c\n", "c\r\n"} {
		out, err := runRoot(t, "2", initial, "1", "fixed", corpusPath, "--no-history")
		if err != nil {
			t.Fatalf("generate failed for %q: %v", initial, err)
		}
		if out != "c a\n" {
			t.Fatalf("unexpected output for %q: %q", initial, out)
		}
	}
}

func TestInspect(t *testing.T) {
	corpusPath := setupEnv(t)
	out, err := runRoot(t, "inspect", "--window", "2", "--corpus", corpusPath, "--top", "1")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.Contains(out, "Window length: 2") || !strings.Contains(out, "Windows: 5") {
		t.Fatalf("unexpected inspect output:\n%s", out)
	}

	raw, err := runRoot(t, "inspect", "--window", "2", "--corpus", corpusPath, "--raw")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if !strings.HasPrefix(raw, "ab : ((c 3 1 1))") {
		t.Fatalf("unexpected raw output:\n%s", raw)
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	setupEnv(t)
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template must parse: %v", err)
	}
	if cfg.Generate.Window != nil {
		t.Fatalf("template values must be commented out")
	}
}
