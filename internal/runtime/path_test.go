package runtime

import "testing"

func TestFormatWindowsModelPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"nested_path", `C:\my\model\model.ckpt`, `C:\\my/model/model.ckpt`},
		{"root_file", `D:\model.ckpt`, `D:\\model.ckpt`},
		{"already_forward_slash", `C:/my/model.ckpt`, `C:\\my/model.ckpt`},
		{"not_drive_qualified", `relative/model.ckpt`, `relative/model.ckpt`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatWindowsModelPath(tt.input)
			if got != tt.want {
				t.Errorf("formatWindowsModelPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
