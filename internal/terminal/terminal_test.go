package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTTY is a writer with a file descriptor.
type fakeTTY struct {
	bytes.Buffer
	fd uintptr
}

func (f *fakeTTY) Fd() uintptr { return f.fd }

const ttyFD = 7

// fakeEnv builds an Environment from vars in which only ttyFD is a terminal.
func fakeEnv(vars map[string]string) Environment {
	return Environment{
		LookupEnv: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		IsTerminal: func(fd int) bool { return fd == ttyFD },
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{in: "", want: ColorAuto},
		{in: "auto", want: ColorAuto},
		{in: "ALWAYS", want: ColorAlways},
		{in: " never ", want: ColorNever},
		{in: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColorMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	var m ColorMode
	require.NoError(t, m.UnmarshalText([]byte("never")))
	assert.Equal(t, ColorNever, m)
	assert.Equal(t, "auto", ColorMode("").String())
}


func TestEnvironment_Colorize(t *testing.T) {
	tty := &fakeTTY{fd: ttyFD}
	pipe := &fakeTTY{fd: 1}

	tests := []struct {
		name string
		vars map[string]string
		mode ColorMode
		out  *fakeTTY
		want bool
	}{
		{name: "always wins over NO_COLOR", mode: ColorAlways, vars: map[string]string{"NO_COLOR": "1"}, out: pipe, want: true},
		{name: "never wins over CLICOLOR_FORCE", mode: ColorNever, vars: map[string]string{"CLICOLOR_FORCE": "1", "TERM": "xterm"}, out: tty, want: false},
		{name: "CLICOLOR_FORCE enables color when piped", mode: ColorAuto, vars: map[string]string{"CLICOLOR_FORCE": "1"}, out: pipe, want: true},
		{name: "CLICOLOR_FORCE=0 is ignored", mode: ColorAuto, vars: map[string]string{"CLICOLOR_FORCE": "0", "TERM": "xterm"}, out: tty, want: true},
		{name: "empty NO_COLOR disables color", mode: ColorAuto, vars: map[string]string{"NO_COLOR": "", "TERM": "xterm"}, out: tty, want: false},
		{name: "color terminal", mode: ColorAuto, vars: map[string]string{"TERM": "xterm-256color"}, out: tty, want: true},
		{name: "COLORTERM without TERM", mode: ColorAuto, vars: map[string]string{"COLORTERM": "truecolor"}, out: tty, want: true},
		{name: "unknown terminal", mode: ColorAuto, vars: map[string]string{"TERM": "adm3a"}, out: tty, want: false},
		{name: "dumb terminal", mode: ColorAuto, vars: map[string]string{"TERM": "dumb"}, out: tty, want: false},
		{name: "CLICOLOR=0 on a terminal", mode: ColorAuto, vars: map[string]string{"TERM": "xterm", "CLICOLOR": "0"}, out: tty, want: false},
		{name: "not a terminal", mode: ColorAuto, vars: map[string]string{"TERM": "xterm"}, out: pipe, want: false},
		{name: "terminal inside CI", mode: ColorAuto, vars: map[string]string{"TERM": "xterm", "GITHUB_ACTIONS": "true"}, out: tty, want: false},
		{name: "CI=false is not CI", mode: ColorAuto, vars: map[string]string{"TERM": "xterm", "CI": "false"}, out: tty, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fakeEnv(tt.vars).Colorize(tt.mode, tt.out))
		})
	}
}

func TestEnvironment_Interactive(t *testing.T) {
	env := fakeEnv(nil)
	assert.True(t, env.Interactive(&fakeTTY{fd: ttyFD}))
	assert.False(t, env.Interactive(&fakeTTY{fd: 2}))
	assert.False(t, env.Interactive(&bytes.Buffer{}), "writers without a descriptor are never terminals")
	assert.False(t, fakeEnv(map[string]string{"CI": "1"}).Interactive(&fakeTTY{fd: ttyFD}))
}

func TestShouldColorize(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")

	var buf bytes.Buffer
	assert.False(t, ShouldColorize(ColorAuto, &buf))
	assert.True(t, ShouldColorize(ColorAlways, &buf))
	assert.False(t, ShouldColorize(ColorNever, &buf))
}
