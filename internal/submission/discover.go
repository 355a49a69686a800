package submission

import (
	"errors"
	"io/fs"
	"path"
	"strings"

	"github.com/noah-isme/gema-lab-grader/internal/grading"
)

// DefaultSkipDirs are never searched for student files.
var DefaultSkipDirs = []string{"node_modules", ".git", "artifacts"}

var errStopWalk = errors.New("stop walk")

// Locator finds the markup and stylesheet files of a submission.
type Locator struct {
	MarkupName     string
	StylesheetName string
	SkipDirs       []string
}

// NewLocator builds a Locator for a lab.
func NewLocator(lab grading.Lab, artifactsDir string) Locator {
	skip := []string{"node_modules", ".git"}
	if dir := strings.Trim(path.Clean("/"+artifactsDir), "/"); dir != "" {
		skip = append(skip, path.Base(dir))
	} else {
		skip = append(skip, "artifacts")
	}

	return Locator{
		MarkupName:     lab.MarkupFile,
		StylesheetName: lab.StylesheetFile,
		SkipDirs:       skip,
	}
}

// Discover locates and reads both files. A file that is not found has an
// empty Path; one that cannot be read carries its read error.
func (l Locator) Discover(fsys fs.FS) (markupFile, stylesheetFile grading.File) {
	markupPath := l.locate(fsys, l.MarkupName, isMarkup)
	stylesheetPath := l.locate(fsys, l.StylesheetName, func(name string) bool {
		return strings.EqualFold(name, l.StylesheetName)
	})

	return read(fsys, markupPath), read(fsys, stylesheetPath)
}

func (l Locator) locate(fsys fs.FS, preferred string, match func(name string) bool) string {
	if preferred != "" {
		if info, err := fs.Stat(fsys, preferred); err == nil && !info.IsDir() {
			return preferred
		}
	}

	var found string
	_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && p != "." {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != "." && l.skipped(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if match(d.Name()) {
			found = p
			return errStopWalk
		}
		return nil
	})

	return found
}

func (l Locator) skipped(dir string) bool {
	skip := l.SkipDirs
	if skip == nil {
		skip = DefaultSkipDirs
	}
	for _, name := range skip {
		if dir == name {
			return true
		}
	}
	return false
}

func isMarkup(name string) bool {
	return strings.EqualFold(path.Ext(name), ".html")
}

func read(fsys fs.FS, p string) grading.File {
	if p == "" {
		return grading.File{}
	}

	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return grading.File{Path: p, Err: err}
	}
	return grading.File{Path: p, Content: string(data)}
}
