package pdfdoc

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// tempPrefix names the scratch directories join creates.
const tempPrefix = "pdfmerger-"

// CleanupTemps removes scratch directories left in dir by an interrupted
// join that are older than maxAge. It returns how many were removed.
func CleanupTemps(dir string, maxAge time.Duration) int {
	if dir == "" {
		dir = os.TempDir()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	now := time.Now()
	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if os.RemoveAll(filepath.Join(dir, e.Name())) == nil {
			removed++
		}
	}
	return removed
}
