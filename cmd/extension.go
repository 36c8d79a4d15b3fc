package cmd

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
)

// RunExtension attempts to find and execute an external pft-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
//
// The global flags are passed to the extension through their environment
// variable.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "pft-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		log.Printf("extension-not-found name=%q err=%q", name, err)
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), extensionEnv(flag.CommandLine)...)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}

// extensionEnv returns NAME=value for every global flag of fs with an
// environment variable.
func extensionEnv(fs *flag.FlagSet) []string {
	var env []string
	fs.VisitAll(func(f *flag.Flag) {
		if name, ok := Env[f.Name]; ok {
			env = append(env, name+"="+f.Value.String())
		}
	})
	return env
}
