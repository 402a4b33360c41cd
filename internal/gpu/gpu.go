// Package gpu implements the GPU information capability: "detect
// first/UUID-addressed device, return model/cores/clocks/memory/compute-
// capability." The one concrete detector shells out to nvidia-smi.
package gpu

// Descriptor is the detected GPU's capability report, serialized with the
// upstream gpu-detection library's key names: kebab-case, with dotted
// unit-suffixed keys ("graphics.mhz", "total.gib") for clocks and memory.
type Descriptor struct {
	Model  string `json:"model"`
	Cuda   Cuda   `json:"cuda"`
	Clocks Clocks `json:"clocks"`
	Memory Memory `json:"memory"`
}

type Cuda struct {
	Enabled           bool   `json:"enabled"`
	Cores             int    `json:"cores"`
	Version           string `json:"version"`
	ComputeCapability string `json:"compute-capability"`
}

type Clocks struct {
	GraphicsMHz int `json:"graphics.mhz"`
	MemoryMHz   int `json:"memory.mhz"`
	SMMHz       int `json:"sm.mhz"`
	VideoMHz    int `json:"video.mhz"`
}

type Memory struct {
	BandwidthGiB *float64 `json:"bandwidth.gib,omitempty"`
	TotalGiB     float64  `json:"total.gib"`
}

// Detector detects a device by UUID, or the first device when uuid is
// empty. Absence of any GPU (or of the underlying tooling) is reported as
// (nil, nil), not an error — callers degrade gracefully rather than
// treating "no GPU" as a failure.
type Detector interface {
	Detect(uuid string) (*Descriptor, error)
}
