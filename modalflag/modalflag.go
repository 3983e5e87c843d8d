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

// Package modalflag layers sub-modes on top of the standard flag package,
// for command lines of the form:
//
//	tracer8 [flags] MODE [mode flags] arguments
//
// Each call to NewMode() begins a fresh flag set for the mode selected by
// the previous Parse().
package modalflag

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

const modeSeparator = "/"

// Modes handles command line arguments divided into sub-modes. The Output
// field should be set before calling Parse() or help messages will not be
// seen.
type Modes struct {
	// where to print help messages. defaults to io.Discard
	Output io.Writer

	flags *flag.FlagSet

	args    []string
	argsIdx int

	// sub-modes valid for the next Parse(). the first entry is the
	// default, chosen when the next argument matches no sub-mode
	subModes []string

	// the series of sub-modes encountered over subsequent calls to Parse()
	path []string

	additionalHelp string
}

// ParseResult is returned from the Parse() function.
type ParseResult int

// List of valid ParseResult values.
const (
	// continue with command line processing. if sub-modes were specified
	// then Mode() says which one was selected
	ParseContinue ParseResult = iota

	// help was requested and has been printed
	ParseHelp

	// an error occurred and is returned as the second return value
	ParseError
)

func (md *Modes) String() string {
	return md.Path()
}

// Mode returns the last sub-mode to be selected.
func (md *Modes) Mode() string {
	if len(md.path) == 0 {
		return ""
	}
	return md.path[len(md.path)-1]
}

// Path returns every sub-mode encountered during parsing, separated by
// slashes.
func (md *Modes) Path() string {
	return strings.Join(md.path, modeSeparator)
}

// NewArgs begins parsing of an argument list (os.Args[1:] for example).
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.argsIdx = 0
	md.NewMode()
}

// NewMode indicates that further arguments belong to the sub-mode selected
// by the previous Parse().
func (md *Modes) NewMode() {
	md.subModes = nil
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.additionalHelp = ""
}

// AddSubModes declares the sub-modes valid for the next Parse(). The first
// is the default. Comparison with the command line is case insensitive.
func (md *Modes) AddSubModes(subModes ...string) {
	for _, m := range subModes {
		md.subModes = append(md.subModes, strings.ToUpper(m))
	}
}

// AdditionalHelp adds text displayed after the flag summary when help is
// requested.
func (md *Modes) AdditionalHelp(help string) {
	md.additionalHelp = help
}

// AddBool adds a bool flag for the next call to Parse().
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddString adds a string flag for the next call to Parse().
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddUint adds a uint flag for the next call to Parse().
func (md *Modes) AddUint(name string, value uint, usage string) *uint {
	return md.flags.Uint(name, value, usage)
}

// AddDuration adds a time.Duration flag for the next call to Parse().
func (md *Modes) AddDuration(name string, value time.Duration, usage string) *time.Duration {
	return md.flags.Duration(name, value, usage)
}

// Parse the current layer of arguments.
func (md *Modes) Parse() (ParseResult, error) {
	output := md.Output
	if output == nil {
		output = io.Discard
	}

	// the flag package writes its own messages on error. suppress them; we
	// compose the help output ourselves
	md.flags.SetOutput(io.Discard)

	if err := md.flags.Parse(md.args[md.argsIdx:]); err != nil {
		if err == flag.ErrHelp {
			md.printHelp(output)
			return ParseHelp, nil
		}
		return ParseError, err
	}

	if len(md.subModes) > 0 {
		// the next parse starts after the flags this parse consumed
		md.argsIdx = len(md.args) - len(md.flags.Args())

		// assume the default sub-mode until the next argument says
		// otherwise
		mode := md.subModes[0]

		arg := strings.ToUpper(md.flags.Arg(0))
		for _, m := range md.subModes {
			if m == arg {
				mode = arg
				md.argsIdx++
				break // for loop
			}
		}

		md.path = append(md.path, mode)
	}

	return ParseContinue, nil
}

// RemainingArgs returns the arguments that are not flags.
func (md *Modes) RemainingArgs() []string {
	return md.flags.Args()
}

// GetArg returns the numbered remaining argument, or the empty string.
func (md *Modes) GetArg(i int) string {
	return md.flags.Arg(i)
}

func (md *Modes) printHelp(output io.Writer) {
	if md.Path() != "" {
		fmt.Fprintf(output, "mode: %s\n", md.Path())
	}

	md.flags.SetOutput(output)
	md.flags.PrintDefaults()
	md.flags.SetOutput(io.Discard)

	if len(md.subModes) > 0 {
		fmt.Fprintf(output, "sub-modes: %s (default %s)\n",
			strings.Join(md.subModes, ", "), md.subModes[0])
	}

	if md.additionalHelp != "" {
		fmt.Fprintln(output, md.additionalHelp)
	}
}
