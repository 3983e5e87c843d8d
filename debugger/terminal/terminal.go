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

// Package terminal defines the interface between the debugger's command
// loop and its input/output device. The plainterm and easyterm
// sub-packages provide implementations.
package terminal

// Style allows an Output implementation to distinguish categories of
// output. Implementations are free to ignore it.
type Style int

// List of output styles.
const (
	StyleOutput Style = iota
	StyleSnapshot
	StyleFeedback
	StyleError
)

// Prompt is what an interactive terminal shows while waiting for input.
type Prompt struct {
	Content string
}

func (p Prompt) String() string {
	return p.Content
}

// Input defines the operations required of the reading side of a terminal.
type Input interface {
	// TermRead returns one line of input, without the line terminator. An
	// io.EOF error ends the command loop cleanly.
	TermRead(prompt Prompt) (string, error)

	// IsInteractive returns true for implementations driven by a human.
	IsInteractive() bool
}

// Output defines the operations required of the writing side of a
// terminal.
type Output interface {
	TermPrintLine(Style, string)
}

// Terminal defines the operations required by the debugger's command loop.
type Terminal interface {
	Input
	Output

	// Initialise the terminal. not all implementations need to do anything.
	Initialise() error

	// CleanUp restores the terminal to its original condition, if possible.
	CleanUp()
}
