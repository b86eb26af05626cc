package backend

import (
	"path"
	"strings"
)

// FormatFromPath maps an output file extension to a normalized format name.
// Unknown extensions encode as png.
func FormatFromPath(p string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
	return normalizeFormat(ext)
}

func normalizeFormat(format string) string {
	switch format {
	case "jpg", "jpeg":
		return "jpeg"
	case "tif", "tiff":
		return "tiff"
	case "png", "gif", "bmp", "webp":
		return format
	default:
		return "png"
	}
}

func ContentType(format string) string {
	switch normalizeFormat(strings.ToLower(strings.TrimSpace(format))) {
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func jpegQuality(quality int) int {
	if quality <= 0 || quality > 100 {
		return 90
	}
	return quality
}
