package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

// daemonEnv marks the re-executed child so it skips the fork step.
const daemonEnv = "TAPD_DAEMON"

// pidfileAllowed restricts pidfiles to /run/*.pid without traversal.
// Anything else is silently ignored, as a pidfile is an optional nicety.
func pidfileAllowed(path string) bool {
	return strings.HasSuffix(path, ".pid") &&
		strings.HasPrefix(path, "/run/") &&
		!strings.Contains(path, "..")
}

// killOldInstance terminates a previous tapd still holding the pidfile.
// The pid is trusted only if its /proc cmdline mentions tapd, so a
// recycled pid never gets an accidental SIGTERM.
func killOldInstance(path string, log *slog.Logger) {
	if path == "" || !pidfileAllowed(path) {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return
	}
	cmdline, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		return
	}
	if !strings.Contains(string(cmdline), "tapd") {
		return
	}
	log.Info("terminating old instance", slog.Int("pid", pid))
	_ = syscall.Kill(pid, syscall.SIGTERM)
}

// writePidfile records the current pid. Disallowed paths are skipped.
func writePidfile(path string) error {
	if path == "" || !pidfileAllowed(path) {
		return nil
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644)
}

// reExecDaemon detaches by re-executing the binary in a new session
// with stdio closed. Returns true in the parent, which should exit;
// the child continues with the same arguments.
func reExecDaemon() bool {
	if os.Getenv(daemonEnv) == "1" {
		return false
	}

	exe, err := os.Executable()
	if err != nil {
		fatal("daemonize: %v", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), daemonEnv+"=1")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		fatal("daemonize: %v", err)
	}
	return true
}
