package gpu

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const queryFields = "name,compute_cap,driver_version,clocks.gr,clocks.mem,clocks.sm,clocks.video,memory.total,uuid"

// NvidiaSMIDetector shells out to nvidia-smi and parses its CSV output.
// nvidia-smi's CSV query has no field for CUDA core count (that requires
// NVML's per-architecture lookup table), so Cuda.Cores is always left at
// its zero value here.
type NvidiaSMIDetector struct {
	// Binary overrides the nvidia-smi executable name, for tests.
	Binary string
}

// Detect runs nvidia-smi, optionally filtered to the device with the given
// UUID, and parses the first matching row. If nvidia-smi is not installed,
// exits non-zero, or reports no devices, Detect returns (nil, nil): the
// caller treats "no GPU" as a normal outcome, not a failure.
func (d *NvidiaSMIDetector) Detect(uuid string) (*Descriptor, error) {
	binary := d.Binary
	if binary == "" {
		binary = "nvidia-smi"
	}

	args := []string{"--query-gpu=" + queryFields, "--format=csv,noheader,nounits"}
	if uuid != "" {
		args = append(args, "-i", uuid)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		return nil, nil
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, nil
	}

	return parseRow(lines[0])
}

func parseRow(row string) (*Descriptor, error) {
	fields := strings.Split(row, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 9 {
		return nil, nil
	}

	graphicsMHz, _ := strconv.Atoi(fields[3])
	memMHz, _ := strconv.Atoi(fields[4])
	smMHz, _ := strconv.Atoi(fields[5])
	videoMHz, _ := strconv.Atoi(fields[6])
	totalMiB, _ := strconv.ParseFloat(fields[7], 64)

	return &Descriptor{
		Model: fields[0],
		Cuda: Cuda{
			Enabled:           true,
			Version:           fields[2],
			ComputeCapability: fields[1],
		},
		Clocks: Clocks{
			GraphicsMHz: graphicsMHz,
			MemoryMHz:   memMHz,
			SMMHz:       smMHz,
			VideoMHz:    videoMHz,
		},
		Memory: Memory{
			TotalGiB: totalMiB / 1024,
		},
	}, nil
}
