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

// Package performance measures how fast the emulation runs. Check() steps
// a machine for a fixed wall-clock duration and reports instruction and
// cycle throughput, optionally producing CPU and memory profiles.
package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/tracer8/tracer8/curated"
	"github.com/tracer8/tracer8/hardware"
)

// Error patterns for the performance package.
const (
	PerformanceError = "performance: %v"
)

// how often the deadline is polled, in instructions. polling per
// instruction would distort the measurement.
const pollInterval = 4096

// Check steps the machine for the given wall-clock duration and writes a
// throughput report. The machine is expected to be loaded with a program
// that does not fail; an engine error ends the measurement early and is
// returned.
func Check(output io.Writer, profile Profile, sys *hardware.System, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf(PerformanceError, err)
	}

	runner := func() error {
		startCycles := sys.Engine.TotalCycles()
		instructions := 0

		start := time.Now()
		deadline := start.Add(dur)

		for {
			for i := 0; i < pollInterval; i++ {
				if _, err := sys.Engine.Step(); err != nil {
					return err
				}
				instructions++
			}
			if time.Now().After(deadline) {
				break
			}
		}

		elapsed := time.Since(start).Seconds()
		cycles := sys.Engine.TotalCycles() - startCycles

		fmt.Fprintf(output, "%d instructions in %.2fs\n", instructions, elapsed)
		fmt.Fprintf(output, "%.0f instructions/sec; %.0f cycles/sec\n",
			float64(instructions)/elapsed, float64(cycles)/elapsed)

		return nil
	}

	return RunProfiler(profile, "performance", runner)
}
