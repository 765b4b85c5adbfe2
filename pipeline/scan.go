package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Subject is one recording paired with its annotation file.
type Subject struct {
	// Stem is the recording file name without directory or extension.
	Stem string

	// PSGPath is the raw recording file.
	PSGPath string

	// AnnoPath is the matched annotation file.
	AnnoPath string
}

// Scan finds every file with the given extension under root, recursively,
// in sorted order.
func Scan(root, ext string) ([]string, error) {
	pattern := filepath.Join(root, "**", "*."+ext)
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// stem returns the file name without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Pair matches each recording with an annotation file: an exact stem match
// first, then fuzzy containment either way (recording stem inside the
// annotation stem or vice versa). Recordings with no match are dropped;
// the caller accounts for them as skipped subjects.
func Pair(psgFiles, annoFiles []string) []Subject {
	annoByStem := make(map[string]string, len(annoFiles))
	annoStems := make([]string, 0, len(annoFiles))
	for _, f := range annoFiles {
		s := stem(f)
		if _, ok := annoByStem[s]; !ok {
			annoStems = append(annoStems, s)
		}
		annoByStem[s] = f
	}
	sort.Strings(annoStems)

	var subjects []Subject
	for _, psgPath := range psgFiles {
		s := stem(psgPath)

		annoPath, ok := annoByStem[s]
		if !ok {
			for _, key := range annoStems {
				if strings.Contains(key, s) || strings.Contains(s, key) {
					annoPath = annoByStem[key]
					break
				}
			}
		}
		if annoPath == "" {
			continue
		}

		subjects = append(subjects, Subject{
			Stem:     s,
			PSGPath:  psgPath,
			AnnoPath: annoPath,
		})
	}
	return subjects
}
