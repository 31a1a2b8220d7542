//go:build windows

package commands

import "fmt"

// startDaemon is not supported on Windows: there is no Setsid-style
// detach primitive, and "foreground under a supervisor" is the
// expected way to run netkitd there.
func startDaemon() error {
	return fmt.Errorf("background/daemon mode is not supported on windows; run with --foreground under a service manager")
}
