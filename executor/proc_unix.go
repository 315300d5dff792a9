//go:build !windows

package executor

import (
	"os/exec"
	"syscall"
)

func defaultShell() string {
	return "/bin/sh"
}

func shellCommand(shell, command string) *exec.Cmd {
	return exec.Command(shell, "-c", command)
}

// configureProcess puts the child in its own process group so a timeout can
// take down everything the shell spawned, not just the shell.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminateProcess(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	if pid <= 0 {
		return
	}
	if pgid, err := syscall.Getpgid(pid); err == nil && pgid > 0 {
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		return
	}
	_ = cmd.Process.Kill()
}
