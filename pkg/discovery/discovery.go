// Package discovery turns command-line inputs into the list of files to tail.
package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
)

// Resolve expands inputs into a sorted, deduplicated list of regular files.
// Files are taken as is. Directories contribute the files they contain, and
// their subdirectories too when recursive is set. Inputs containing glob
// metacharacters are matched with doublestar, so "**" crosses directories.
//
// Inputs that cannot be resolved are skipped; the returned error joins the
// reasons and does not invalidate the files found.
func Resolve(inputs []string, recursive bool) ([]string, error) {
	var (
		files []string
		errs  []error
	)

	for _, input := range inputs {
		found, err := resolveOne(input, recursive)
		if err != nil {
			log.WithFields(log.Fields{"path": input, "err": err}).Warn("skipping input")
			errs = append(errs, err)
		}
		files = append(files, found...)
	}

	return dedupe(files), errors.Join(errs...)
}

func resolveOne(input string, recursive bool) ([]string, error) {
	if hasMeta(input) {
		matches, err := doublestar.FilepathGlob(input, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", input, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %s", input)
		}
		return matches, nil
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", input, err)
	}
	if info.Mode().IsRegular() {
		return []string{input}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a regular file", input)
	}
	return walkDir(input, recursive)
}

// walkDir lists the regular files under dir, descending only when recursive.
// Symlinks to files are followed; symlinks to directories are not, so a link
// back into the tree cannot loop or list a file twice.
func walkDir(dir string, recursive bool) ([]string, error) {
	var (
		files []string
		errs  []error
	)
	stack := []string{dir}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(current)
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot read directory %s: %w", current, err))
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(current, entry.Name())
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			switch {
			case info.Mode().IsRegular():
				files = append(files, path)
			case info.IsDir() && recursive && entry.Type()&os.ModeSymlink == 0:
				stack = append(stack, path)
			case info.IsDir() && recursive:
				log.WithField("path", path).Debug("not following directory symlink")
			}
		}
	}
	return files, errors.Join(errs...)
}

func hasMeta(path string) bool {
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func dedupe(files []string) []string {
	if len(files) == 0 {
		return nil
	}
	for i := range files {
		files[i] = filepath.Clean(files[i])
	}
	sort.Strings(files)
	out := files[:1]
	for _, f := range files[1:] {
		if f != out[len(out)-1] {
			out = append(out, f)
		}
	}
	return out
}
