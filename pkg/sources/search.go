package sources

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// ScriptExtensions are the file extensions recognized as analyzable sources.
var ScriptExtensions = []string{".scr", ".script", ".fsx"}

// ProjectExtension marks project files listing member sources.
const ProjectExtension = ".scrproj"

// SearchDirs walks the given directories and returns every script and
// project file found, skipping dependency and hidden directories.
func SearchDirs(dirs ...string) []string {
	var files []string
	for _, dir := range dirs {
		if !filepath.IsAbs(dir) {
			a, err := filepath.Abs(dir)
			if err == nil {
				dir = a
			}
		}
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			name := d.Name()
			if d.IsDir() {
				if name == "node_modules" || name == "vendor" {
					return fs.SkipDir
				}
				if strings.HasPrefix(name, ".") && path != dir {
					return fs.SkipDir
				}
				return nil
			}
			if IsScriptFile(name) || strings.HasSuffix(name, ProjectExtension) {
				files = append(files, path)
			}
			return nil
		})
	}
	return files
}

// IsScriptFile reports whether the file name has a recognized script
// extension.
func IsScriptFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range ScriptExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
