package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment passed to extensions.
const (
	EnvConfigFile = "KASIR_CONFIG"
	EnvPlain      = "KASIR_PLAIN"
)

// ExtensionPrefix prefixes the name of extension binaries, e.g. ksr-backup.
const ExtensionPrefix = "ksr-"

// RunExtension attempts to find and execute an external ksr-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := ExtensionPrefix + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// global flags are passed as environment variables
	cmd.Env = append(os.Environ(),
		EnvConfigFile+"="+*ConfigFile,
		EnvPlain+"="+strconv.FormatBool(*Plain),
	)

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
