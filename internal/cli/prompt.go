package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

func (a *App) promptInput(prompt string) string {
	fmt.Fprint(a.opts.Err, prompt)
	return a.readLine()
}

// promptPassword hides input on a terminal and falls back to a plain line
// read when stdin is piped.
func (a *App) promptPassword(prompt string) string {
	fmt.Fprint(a.opts.Err, prompt)
	if f, ok := a.opts.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.opts.Err)
		if err != nil {
			return ""
		}
		return string(password)
	}
	return a.readLine()
}

func (a *App) readLine() string {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.opts.In)
	}
	line, _ := a.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
