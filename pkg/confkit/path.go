package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// maxAscents bounds how many directories the repo root search climbs.
const maxAscents = 8

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}

// isRepoRoot reports whether dir looks like the top of a checkout.
func isRepoRoot(dir string) bool {
	return fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git"))
}

// walkUp calls fn on dir and then on each parent in turn, stopping once fn
// returns true, the filesystem root is reached, or maxAscents directories
// have been visited. It reports whether fn ever returned true.
func walkUp(dir string, fn func(string) bool) bool {
	for i := 0; i < maxAscents; i++ {
		if fn(dir) {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
	return false
}

// ProjectRoot locates the repository root by walking upward from this source
// file until a directory carrying go.mod or .git is found. It falls back to
// the working directory so binaries run outside a checkout still get a
// usable base path.
func ProjectRoot() (string, error) {
	if _, file, _, ok := runtime.Caller(0); ok {
		root := ""
		walkUp(filepath.Dir(file), func(dir string) bool {
			if isRepoRoot(dir) {
				root = dir
				return true
			}
			return false
		})
		if root != "" {
			return root, nil
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}

// ProjectPath joins the repository root with the provided relative path.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// MustProjectPath returns ProjectPath(rel) and panics on failure.
func MustProjectPath(rel string) string {
	p, err := ProjectPath(rel)
	if err != nil {
		panic(err)
	}
	return p
}
