package runtime

import (
	"runtime"
	"strings"
)

// formatModelPath renders path in the form the HTTP-API child expects for
// its model-path argument. On drive-letter platforms the root is
// double-escaped and the remainder's separators normalized to "/"
// (C:\my\model\model.ckpt -> C:\\my/model/model.ckpt); elsewhere the path
// is passed through unchanged.
func formatModelPath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}
	return formatWindowsModelPath(path)
}

func formatWindowsModelPath(path string) string {
	if len(path) < 3 || path[1] != ':' || (path[2] != '\\' && path[2] != '/') {
		return path
	}
	drive := path[:2]
	rest := path[3:]
	rest = strings.ReplaceAll(rest, "\\", "/")
	return drive + `\\` + rest
}
