// Package terminal decides whether report output should be colorized.
package terminal

import (
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/term"
)

// colorTerminals lists TERM values (or prefixes before "-") that support
// basic colors.
var colorTerminals = []string{
	"xterm", "screen", "tmux", "rxvt", "vt100", "vt220", "ansi", "linux",
	"alacritty", "kitty", "foot", "wezterm",
}

// ciEnvVars mark a CI job, where output is captured even when a pty is
// attached.
var ciEnvVars = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"JENKINS_URL",
	"BUILDKITE",
	"TF_BUILD",
}

// fder is implemented by *os.File.
type fder interface {
	Fd() uintptr
}

// Environment is the process state the color decision depends on.
type Environment struct {
	LookupEnv  func(key string) (string, bool)
	IsTerminal func(fd int) bool
}

// OSEnvironment reads the real process environment and terminal.
func OSEnvironment() Environment {
	return Environment{LookupEnv: os.LookupEnv, IsTerminal: term.IsTerminal}
}

// ShouldColorize is OSEnvironment().Colorize(mode, out).
func ShouldColorize(mode ColorMode, out io.Writer) bool {
	return OSEnvironment().Colorize(mode, out)
}

// Colorize reports whether output written to out gets color. In order:
//  1. mode always/never
//  2. CLICOLOR_FORCE (truthy values only)
//  3. NO_COLOR, whatever its value
//  4. out must be a terminal outside CI with a color-capable TERM or COLORTERM
//  5. CLICOLOR, when set, has the last word
func (e Environment) Colorize(mode ColorMode, out io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if isTruthy(e.getenv("CLICOLOR_FORCE")) {
		return true
	}
	if _, ok := e.LookupEnv("NO_COLOR"); ok {
		return false
	}

	if !e.Interactive(out) || !e.colorTerminal() {
		return false
	}
	if cliColor := e.getenv("CLICOLOR"); cliColor != "" {
		return isTruthy(cliColor)
	}
	return true
}

// Interactive reports whether out is a terminal and the process is not a
// CI job. Writers other than files are never terminals.
func (e Environment) Interactive(out io.Writer) bool {
	if e.inCI() {
		return false
	}
	f, ok := out.(fder)
	if !ok {
		return false
	}
	// #nosec G115 - file descriptors fit in int
	return e.IsTerminal(int(f.Fd()))
}

func (e Environment) inCI() bool {
	return lo.SomeBy(ciEnvVars, func(key string) bool {
		value := e.getenv(key)
		if value == "" {
			return false
		}
		// CI=false and CI=0 are set by some tools to mean "not CI".
		if key == "CI" {
			lower := strings.ToLower(strings.TrimSpace(value))
			return lower != "false" && lower != "0" && lower != "no"
		}
		return true
	})
}

func (e Environment) colorTerminal() bool {
	if e.getenv("COLORTERM") != "" {
		return true
	}
	termName := strings.ToLower(strings.TrimSpace(e.getenv("TERM")))
	if termName == "" || termName == "dumb" {
		return false
	}
	return lo.ContainsBy(colorTerminals, func(t string) bool {
		return termName == t || strings.HasPrefix(termName, t+"-")
	})
}

func (e Environment) getenv(key string) string {
	v, _ := e.LookupEnv(key)
	return v
}

// isTruthy accepts "1", "true" and "yes", case insensitive.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
