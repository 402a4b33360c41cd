package offertemplate

import (
	"encoding/json"
	"testing"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/gpu"
)

func TestRenderWithoutGPU(t *testing.T) {
	out, err := Render("httpapi", nil)
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}

	var doc document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if doc.Properties["golem.inf.ai.runtime"] != "httpapi" {
		t.Errorf("golem.inf.ai.runtime = %v, want httpapi", doc.Properties["golem.inf.ai.runtime"])
	}
	if _, ok := doc.Properties[gpuProperty]; ok {
		t.Error("gpu property should be absent when no GPU detected")
	}
}

func TestRenderWithGPU(t *testing.T) {
	desc := &gpu.Descriptor{Model: "Test GPU"}

	out, err := Render("dummy", desc)
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}

	var doc document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	gpuProps, ok := doc.Properties[gpuProperty].(map[string]any)
	if !ok {
		t.Fatalf("gpu property missing or wrong shape: %v", doc.Properties[gpuProperty])
	}
	if gpuProps["model"] != "Test GPU" {
		t.Errorf("gpu model = %v, want Test GPU", gpuProps["model"])
	}
}
