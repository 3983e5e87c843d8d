// This file is part of Tracer8.
//
// Tracer8 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Tracer8 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Tracer8.  If not, see <https://www.gnu.org/licenses/>.

// Package easyterm implements the Terminal interface against a posix
// terminal in cbreak mode, wrapping "github.com/pkg/term/termios". Input is
// read a character at a time, which allows single-key line editing that a
// cooked-mode terminal cannot offer.
package easyterm

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/tracer8/tracer8/debugger/terminal"
)

// keycodes handled during input.
const (
	keyInterrupt = 3   // ctrl-c
	keyEndOfFile = 4   // ctrl-d
	keyBackspace = 8   // ctrl-h
	keyCarriage  = 13  // return
	keyDelete    = 127 // backspace on most terminals
)

// EasyTerm is a cbreak-mode terminal. The terminal is returned to canonical
// mode by CleanUp().
type EasyTerm struct {
	input  *os.File
	output *os.File

	canAttr    unix.Termios
	cbreakAttr unix.Termios
}

// NewEasyTerm is the preferred method of initialisation for the EasyTerm
// type.
func NewEasyTerm() *EasyTerm {
	return &EasyTerm{
		input:  os.Stdin,
		output: os.Stdout,
	}
}

// Initialise implements the terminal.Terminal interface. The terminal is
// placed into cbreak mode.
func (et *EasyTerm) Initialise() error {
	if err := termios.Tcgetattr(et.input.Fd(), &et.canAttr); err != nil {
		return err
	}
	et.cbreakAttr = et.canAttr
	termios.Cfmakecbreak(&et.cbreakAttr)
	return termios.Tcsetattr(et.input.Fd(), termios.TCIFLUSH, &et.cbreakAttr)
}

// CleanUp implements the terminal.Terminal interface. The terminal is
// returned to canonical mode.
func (et *EasyTerm) CleanUp() {
	_ = termios.Tcsetattr(et.input.Fd(), termios.TCIFLUSH, &et.canAttr)
}

// IsInteractive implements the terminal.Input interface.
func (et *EasyTerm) IsInteractive() bool {
	return true
}

// TermPrintLine implements the terminal.Output interface.
func (et *EasyTerm) TermPrintLine(style terminal.Style, s string) {
	if style == terminal.StyleError {
		s = fmt.Sprintf("* %s", s)
	}
	et.output.WriteString(s)
	et.output.WriteString("\n")
}

// TermRead implements the terminal.Input interface.
func (et *EasyTerm) TermRead(prompt terminal.Prompt) (string, error) {
	et.output.WriteString(prompt.String())

	line := strings.Builder{}
	buf := make([]byte, 1)

	for {
		n, err := et.input.Read(buf)
		if err != nil {
			return "", err
		}
		if n == 0 {
			continue
		}

		switch buf[0] {
		case keyInterrupt, keyEndOfFile:
			et.output.WriteString("\n")
			return "", io.EOF

		case keyCarriage, '\n':
			et.output.WriteString("\n")
			return line.String(), nil

		case keyBackspace, keyDelete:
			s := line.String()
			if len(s) > 0 {
				line.Reset()
				line.WriteString(s[:len(s)-1])
				et.output.WriteString("\b \b")
			}

		default:
			if buf[0] >= 32 && buf[0] < 127 {
				line.WriteByte(buf[0])
				et.output.Write(buf)
			}
		}
	}
}
