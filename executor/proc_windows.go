//go:build windows

package executor

import "os/exec"

func defaultShell() string {
	return "cmd"
}

func shellCommand(shell, command string) *exec.Cmd {
	return exec.Command(shell, "/C", command)
}

func configureProcess(cmd *exec.Cmd) {}

func terminateProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
