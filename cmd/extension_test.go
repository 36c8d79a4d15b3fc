package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestExtensionMechanism(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts in this test")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	script := "#!/bin/sh\necho \"$PFT_DATA $PFT_USER $*\" > " + out + "\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, "pft-hello"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	oldData, oldUser := *dataFile, *userID
	t.Cleanup(func() { *dataFile, *userID = oldData, oldUser })
	*dataFile, *userID = "test.db", "alice"

	found, code := RunExtension("hello", []string{"a", "b"})
	if !found {
		t.Fatal("pft-hello was not found")
	}
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "test.db alice a b"; strings.TrimSpace(string(got)) != want {
		t.Errorf("extension saw %q, want %q", got, want)
	}

	if found, _ := RunExtension("does-not-exist", nil); found {
		t.Errorf("RunExtension(does-not-exist) found an extension")
	}
}

func TestSetFlagsFromEnv(t *testing.T) {
	fs := flag.NewFlagSet("pft", flag.ContinueOnError)
	data := fs.String("data", "budget.db", "")
	verbose := fs.Bool("v", false, "")
	t.Setenv("PFT_DATA", "/tmp/other.db")
	t.Setenv("PFT_VERBOSE", "true")

	if err := SetFlagsFromEnv(fs); err != nil {
		t.Fatal(err)
	}
	if *data != "/tmp/other.db" || !*verbose {
		t.Errorf("data, verbose = %q, %v", *data, *verbose)
	}
	if err := fs.Parse([]string{"-data", "cli.db"}); err != nil {
		t.Fatal(err)
	}
	if *data != "cli.db" {
		t.Errorf("command line data = %q, want cli.db", *data)
	}

	t.Setenv("PFT_VERBOSE", "maybe")
	if err := SetFlagsFromEnv(fs); err == nil || !strings.Contains(err.Error(), "PFT_VERBOSE") {
		t.Errorf("SetFlagsFromEnv() = %v, want an error about PFT_VERBOSE", err)
	}
}
