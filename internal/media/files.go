package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OutputPrefix marks rendered files so they are never picked up as inputs.
const OutputPrefix = "FINAL_"

var videoFormats = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v", ".flv"}

// IsVideoFile checks if the file has a supported video extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range videoFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// IsSourceClip reports whether path is an input clip: a video that is not
// hidden, not a partial render and not one of our outputs.
func IsSourceClip(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, OutputPrefix) {
		return false
	}
	return IsVideoFile(name)
}

// ScanClips lists source clips directly inside dir, sorted by name.
func ScanClips(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsSourceClip(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}

	sort.Strings(files)
	return files, nil
}

// HasOutput reports whether a FINAL_ render already exists for clipPath. A
// render named after a sibling clip whose stem extends this one, such as
// FINAL_talk_2_x.mp4 next to talk_2.mp4, belongs to that sibling.
func HasOutput(clipPath string) bool {
	dir := filepath.Dir(clipPath)
	stem := stemOf(clipPath)
	if _, err := os.Stat(filepath.Join(dir, OutputPrefix+stem+".mp4")); err == nil {
		return true
	}
	matches, _ := filepath.Glob(filepath.Join(dir, OutputPrefix+globEscape(stem)+"_*.mp4"))
	if len(matches) == 0 {
		return false
	}

	var longer []string
	if clips, err := ScanClips(dir); err == nil {
		for _, c := range clips {
			if s := stemOf(c); len(s) > len(stem) && strings.HasPrefix(s, stem+"_") {
				longer = append(longer, s)
			}
		}
	}
	for _, m := range matches {
		if !ownedByOther(filepath.Base(m), longer) {
			return true
		}
	}
	return false
}

func ownedByOther(output string, stems []string) bool {
	for _, s := range stems {
		if output == OutputPrefix+s+".mp4" || strings.HasPrefix(output, OutputPrefix+s+"_") {
			return true
		}
	}
	return false
}

func stemOf(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func globEscape(s string) string {
	r := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return r.Replace(s)
}
