// Package fsutil holds the file helpers shared by the scene and resource layers.
package fsutil

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	meshExtensions     = []string{".obj"}
	materialExtensions = []string{".mat"}
	imageExtensions    = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
	scriptExtensions   = []string{".lua"}
)

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// Extension returns the lower-cased extension of path including the dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// EnsureExtension appends ext to path unless path already ends with it.
func EnsureExtension(path, ext string) string {
	if Extension(path) == strings.ToLower(ext) {
		return path
	}
	return path + ext
}

// NormalizePath returns path in NFC form with forward slashes, so that paths
// written on one platform compare equal after a round trip through a scene file.
func NormalizePath(path string) string {
	return filepath.ToSlash(norm.NFC.String(path))
}

func IsSupportedMeshFile(path string) bool {
	return slices.Contains(meshExtensions, Extension(path))
}

func IsSupportedMaterialFile(path string) bool {
	return slices.Contains(materialExtensions, Extension(path))
}

func IsSupportedImageFile(path string) bool {
	return slices.Contains(imageExtensions, Extension(path))
}

func IsSupportedScriptFile(path string) bool {
	return slices.Contains(scriptExtensions, Extension(path))
}
