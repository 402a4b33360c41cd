// Package cliout renders terminal-facing output for the CLI's
// human-consumed subcommands (gpu self-test, live counter snapshot): bold
// headers and status coloring plus aligned tables, the same texture as a
// status dashboard, as opposed to the machine-consumed offer-template
// JSON output which stays on plain fmt.
package cliout

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/agreement"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/gpu"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// RenderGPUDetection writes a human-readable detection result: a colored
// "detected"/"not detected" headline plus a clocks/memory table when a
// device was found.
func RenderGPUDetection(w io.Writer, info *gpu.Descriptor) {
	if info == nil {
		fmt.Fprintf(w, "%s %s\n", red("x"), bold("no GPU detected"))
		return
	}

	fmt.Fprintf(w, "%s %s: %s\n", green("+"), bold("detected"), info.Model)

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Field", "Value")
	tbl.WithHeaderFormatter(headerFmt).WithWriter(w)
	tbl.AddRow("cuda", info.Cuda.Version)
	tbl.AddRow("compute capability", info.Cuda.ComputeCapability)
	tbl.AddRow("cuda cores", info.Cuda.Cores)
	tbl.AddRow("graphics clock", fmt.Sprintf("%d MHz", info.Clocks.GraphicsMHz))
	tbl.AddRow("memory clock", fmt.Sprintf("%d MHz", info.Clocks.MemoryMHz))
	tbl.AddRow("total memory", fmt.Sprintf("%.1f GiB", info.Memory.TotalGiB))
	tbl.Print()
}

// RenderCounterSnapshot writes the agreement's counter vector alongside a
// current usage reading, in agreement order.
func RenderCounterSnapshot(w io.Writer, descriptor *agreement.Descriptor, current []float64) {
	fmt.Fprintln(w, bold("Usage Counters"))

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New("Counter", "Value")
	tbl.WithHeaderFormatter(headerFmt).WithWriter(w)
	for i, name := range descriptor.Counters {
		var value float64
		if i < len(current) {
			value = current[i]
		}
		tbl.AddRow(name, fmt.Sprintf("%.4f", value))
	}
	tbl.Print()
}
