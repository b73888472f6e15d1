//go:build windows

package hookrunner

// shellCommand dispatches command through the host shell, per spec §4.3.
func shellCommand(command string) (string, []string) {
	return "cmd", []string{"/C", command}
}
