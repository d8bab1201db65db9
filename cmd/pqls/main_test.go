package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dhamidi/pqls/project"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCmd(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{"ok", "let x = 1 in x", []string{"LetExpression", `"x"`}, false},
		{"partial tree", "1 +", []string{"ArithmeticExpression (context)", "error\t0:3"}, true},
		{"lex error", `"open`, []string{"-:1:1\terror"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.text, "parse", "-")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v\n%s", err, tt.wantErr, out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestLexCmd(t *testing.T) {
	out, err := run(t, "a /* b\nc */ d", "lex", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "line\t0\t") {
		t.Errorf("output does not start with a line record:\n%s", out)
	}

	out, err = run(t, "a\n$", "lex", "--snapshot", "-")
	if err == nil {
		t.Fatalf("expected a lex error, got output:\n%s", out)
	}
	if !strings.Contains(out, "-:2:1\terror") {
		t.Errorf("output missing the line 2 error:\n%s", out)
	}
}

func TestInspectCmd(t *testing.T) {
	out, err := run(t, "let a = 1 in ", "inspect", "-", "--column", "14")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "scope\ta\t") {
		t.Errorf("output missing scope item a:\n%s", out)
	}

	if _, err := run(t, "1", "inspect", "-", "--line", "0"); err == nil {
		t.Error("expected an error for line 0")
	}
}

func TestSubcommandFlagsMerge(t *testing.T) {
	for _, cmd := range newRootCmd().Commands() {
		t.Run(cmd.Name(), func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("merging flags of %s: %v", cmd.Name(), r)
				}
			}()
			cmd.InheritedFlags()
			cmd.LocalFlags()
		})
	}
}

func TestInspectCmdFileAndFlags(t *testing.T) {
	path := writeFile(t, t.TempDir(), "q.pq", "let\n    total = 1\nin\n    tot")
	out, err := run(t, "", "inspect", path, "-l", "4", "--column", "8")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "scope\ttot\tUndefined") || !strings.Contains(out, "scope\ttotal\t") {
		t.Errorf("output missing scope items:\n%s", out)
	}
}

func TestScanCmd(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.pq", "1 + 1")
	writeFile(t, dir, "bad.pq", "let x = in x")
	writeFile(t, dir, "notes.txt", "let")

	out, err := run(t, "", "scan", dir)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files") {
		t.Errorf("err = %v, want 1 of 2 files failing", err)
	}
	for _, want := range []string{"good.pq\tok", "bad.pq:1:9\terror"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "notes.txt") {
		t.Errorf("scanned a non-source file:\n%s", out)
	}
}

func TestInitCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "workspace")
	if _, err := run(t, "", "init", dir); err != nil {
		t.Fatal(err)
	}
	p, err := project.LoadFile(filepath.Join(dir, project.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if p.Config.MaxDepth != project.Default().MaxDepth {
		t.Errorf("maxDepth = %d", p.Config.MaxDepth)
	}
	if _, err := run(t, "", "init", dir); err == nil {
		t.Error("expected init to refuse to overwrite")
	}
	if _, err := run(t, "", "init", "--force", dir); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestUnknownProfileMode(t *testing.T) {
	if _, err := startProfile("sideways", "."); err == nil {
		t.Error("expected an error for an unknown mode")
	}
	stop, err := startProfile("", ".")
	if err != nil {
		t.Fatal(err)
	}
	stop()
}
