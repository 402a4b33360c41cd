// Package offertemplate renders the static offer JSON printed by the
// "offer-template" CLI mode, merging in the selected runtime name and,
// when detectable, the host's GPU capability.
package offertemplate

import (
	_ "embed"
	"encoding/json"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/gpu"
)

//go:embed offer-template.json
var baseline []byte

const gpuProperty = "golem.!exp.gap-35.v1.inf.gpu"

type document struct {
	Properties  map[string]any `json:"properties"`
	Constraints string         `json:"constraints"`
}

// Render produces the pretty-printed offer JSON for runtimeName, with gpuInfo
// (nil if none detected) merged under the gap-35 GPU property.
func Render(runtimeName string, gpuInfo *gpu.Descriptor) ([]byte, error) {
	var doc document
	if err := json.Unmarshal(baseline, &doc); err != nil {
		return nil, apperr.Wrap(apperr.BadConfig, err, "parse embedded offer template")
	}
	if doc.Properties == nil {
		doc.Properties = map[string]any{}
	}

	doc.Properties["golem.inf.ai.runtime"] = runtimeName
	if gpuInfo != nil {
		doc.Properties[gpuProperty] = gpuInfo
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, apperr.Wrap(apperr.BadConfig, err, "render offer template")
	}
	return out, nil
}
