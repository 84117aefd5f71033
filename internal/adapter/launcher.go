package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// Launcher opens image URLs in an external viewer or browser
type Launcher struct {
	command string   // configured opener command, empty for system default
	args    []string // additional arguments for the opener
	goos    string
	start   func(name string, args ...string) error
	logger  *slog.Logger
}

// NewLauncher creates a new Launcher
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		goos:    runtime.GOOS,
		start:   startCommand,
		logger:  logger,
	}
}

// startCommand launches name without waiting for it to exit
func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens url in the configured opener or the system default
func (l *Launcher) Open(url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("nothing to open")
	}
	if l.command != "" {
		return l.launchConfigured(url)
	}
	return l.launchDefault(url)
}

// launchConfigured opens the URL using the configured opener
func (l *Launcher) launchConfigured(url string) error {
	args := append(append([]string{}, l.args...), url)

	// On macOS, fall back to 'open -a' for GUI apps that aren't in PATH
	if l.goos == "darwin" {
		if _, err := exec.LookPath(l.command); err != nil {
			cmdArgs := []string{"-a", l.command}
			if len(l.args) > 0 {
				cmdArgs = append(cmdArgs, "--args")
				cmdArgs = append(cmdArgs, l.args...)
			}
			cmdArgs = append(cmdArgs, url)
			l.logger.Info("using macOS 'open -a' to launch GUI app", "app", l.command, "args", cmdArgs)
			return l.start("open", cmdArgs...)
		}
	}

	l.logger.Info("launching opener", "command", l.command, "args", args)
	return l.start(l.command, args...)
}

// launchDefault opens the URL using the system default handler
func (l *Launcher) launchDefault(url string) error {
	l.logger.Info("launching with system default", "os", l.goos, "url", url)

	switch l.goos {
	case "darwin":
		return l.start("open", url)
	case "windows":
		return l.start("cmd", "/c", "start", "", url)
	default:
		return l.start("xdg-open", url)
	}
}
