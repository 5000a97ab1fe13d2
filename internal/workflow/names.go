package workflow

import (
	"fmt"
	"strings"
)

// MergedName is the file name of every merge result.
const MergedName = "merged.pdf"

// baseName drops any directory part and the first ".pdf" occurrence.
func baseName(orig string) string {
	if i := strings.LastIndexAny(orig, `/\`); i >= 0 {
		orig = orig[i+1:]
	}
	return strings.Replace(orig, ".pdf", "", 1)
}

// SplitName names the single output of extract and range modes.
func SplitName(orig string) string { return baseName(orig) + "_split.pdf" }

// PageName names the output holding page k (1-based) in every mode.
func PageName(orig string, k int) string { return fmt.Sprintf("%s_page_%d.pdf", baseName(orig), k) }

// ArchiveName names the zip holding every output of one split.
func ArchiveName(orig string) string { return baseName(orig) + "_pages.zip" }
