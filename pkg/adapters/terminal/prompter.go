// Package terminal reads passwords and note text from the user's terminal.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/locknote/pkg/core"
)

// PasswordEnvVar, when set, answers every password prompt. Meant for scripts.
const PasswordEnvVar = "LOCKNOTE_PASSWORD"

// DefaultTTY is opened for passwords when standard input is piped.
const DefaultTTY = "/dev/tty"

// Prompter implements core.Prompter. Prompts go to Out so that Stdout stays
// clean for command output.
type Prompter struct {
	In  io.Reader
	Out io.Writer
	// TTY is the device used for passwords when In is not a terminal.
	// Empty disables the fallback.
	TTY string
	// Getenv looks up PasswordEnvVar. Nil means os.LookupEnv.
	Getenv func(string) (string, bool)

	reader *bufio.Reader
}

// NewPrompter returns a prompter reading from stdin and prompting on stderr.
func NewPrompter() *Prompter {
	return &Prompter{
		In:  os.Stdin,
		Out: os.Stderr,
		TTY: DefaultTTY,
	}
}

// ReadPassword reads a secret without echo. The caller wipes the result.
func (p *Prompter) ReadPassword(prompt string) ([]byte, error) {
	lookup := p.Getenv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if pw, ok := lookup(PasswordEnvVar); ok {
		return []byte(pw), nil
	}

	fmt.Fprint(p.Out, prompt)
	defer fmt.Fprintln(p.Out)

	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return term.ReadPassword(int(f.Fd()))
	}

	if p.TTY == "" {
		return nil, fmt.Errorf("cannot read password: input is not a terminal. Set %s", PasswordEnvVar)
	}
	tty, err := os.Open(p.TTY)
	if err != nil {
		return nil, fmt.Errorf("cannot read password: input is piped and %s is not available. Set %s", p.TTY, PasswordEnvVar)
	}
	defer tty.Close()
	return term.ReadPassword(int(tty.Fd()))
}

// ReadLine reads one line and strips the line terminator.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.Out, prompt)
	line, err := p.buffered().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadText reads until end of input.
func (p *Prompter) ReadText(prompt string) (string, error) {
	fmt.Fprint(p.Out, prompt)
	data, err := io.ReadAll(p.buffered())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// buffered shares one reader between ReadLine and ReadText so that bytes
// read ahead by ReadLine are not lost.
func (p *Prompter) buffered() *bufio.Reader {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	return p.reader
}

var _ core.Prompter = (*Prompter)(nil)
