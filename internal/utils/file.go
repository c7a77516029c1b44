package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Naming actions for NewName
const (
	ActionNewFile   = "newfile"
	ActionOverwrite = "overwrite"
	ActionAppend    = "append"
)

var (
	imageExts = []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp"}
	videoExts = []string{"mp4", "mov", "mjpeg", "h264", "avi", "mkv"}
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}

// GetExtension returns the lower-case file extension without the dot
func GetExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	return slices.Contains(imageExts, GetExtension(filename))
}

// IsVideoFile checks if a file has a video extension
func IsVideoFile(filename string) bool {
	return slices.Contains(videoExts, GetExtension(filename))
}

// ListFiles returns the sorted, non-hidden files in dir whose extension is
// one of exts (without dot, any case). An empty exts matches every file.
// keepDir joins dir onto each name; keepExt=false strips the extension.
func ListFiles(dir string, exts []string, keepDir, keepExt bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if len(exts) > 0 && !matchExt(name, exts) {
			continue
		}
		if !keepExt {
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		if keepDir {
			name = filepath.Join(dir, name)
		}
		files = append(files, name)
	}
	slices.Sort(files)
	return files, nil
}

func matchExt(name string, exts []string) bool {
	ext := GetExtension(name)
	for _, want := range exts {
		if strings.EqualFold(strings.TrimPrefix(want, "."), ext) {
			return true
		}
	}
	return false
}

// CommonPrefix returns the longest leading string shared by all paths
func CommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	lo, hi := slices.Min(paths), slices.Max(paths)
	for i := 0; i < len(lo); i++ {
		if lo[i] != hi[i] {
			return lo[:i]
		}
	}
	return lo
}

// NewName returns a path for filename with extension ext (including the
// dot). With ActionNewFile an existing name gets the next free "_N" suffix,
// starting at 2. ActionOverwrite removes an existing file of that name.
func NewName(filename, ext, action string) (string, error) {
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	target := filepath.Join(dir, base+ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	suffix, taken := 1, false
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !strings.HasPrefix(name, base) {
			continue
		}
		taken = true
		rest := name[len(base):]
		if !strings.HasPrefix(rest, "_") {
			continue
		}
		if n, err := strconv.Atoi(rest[1:]); err == nil {
			suffix = max(suffix, n)
		}
	}
	if !taken {
		return target, nil
	}

	switch action {
	case ActionAppend:
		return target, nil
	case ActionOverwrite:
		if FileExists(target) {
			if err := os.Remove(target); err != nil {
				return "", fmt.Errorf("failed to remove %s: %w", target, err)
			}
		}
		return target, nil
	case ActionNewFile, "":
		return filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, suffix+1, ext)), nil
	default:
		return "", fmt.Errorf("unknown naming action %q", action)
	}
}

// Move moves file into dir, keeping its name, and returns the new path
func Move(file, dir string) (string, error) {
	if !FileExists(file) {
		return "", fmt.Errorf("file %s does not exist", file)
	}
	if !DirExists(dir) {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	dst := filepath.Join(dir, filepath.Base(file))
	if err := os.Rename(file, dst); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", file, err)
	}
	return dst, nil
}

// OutputFilename builds dir/<name><suffix>.<format> for an input file
func OutputFilename(inputFile, outputDir, suffix, format string) string {
	name := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	if format == "" {
		format = GetExtension(inputFile)
		if format == "" {
			format = "jpg"
		}
	}
	return filepath.Join(outputDir, name+suffix+"."+format)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SanitizeFilename replaces characters that are invalid in filenames
func SanitizeFilename(filename string) string {
	result := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, filename)
	return strings.Trim(result, " .")
}

// FormatFileSize formats a byte count for logs
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
