// Package confkit holds the configuration plumbing shared by the API server,
// the warmer daemon and the dev scripts: path resolution relative to the main
// config file, typed loading of per-concern config files, .env discovery and
// repository root lookup.
package confkit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeromicro/go-zero/core/conf"
)

// ResolvePath expands environment variables in file and, when the result is
// still relative, anchors it at base. Absolute paths are returned as-is after
// expansion.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// LoadFile reads one config file into a fresh T through go-zero's loader, so
// json tag defaults and options apply. With useEnv set, ${VAR} references in
// the file body are expanded from the environment first.
func LoadFile[T any](path string, useEnv bool) (*T, error) {
	var cfg T
	var opts []conf.Option
	if useEnv {
		opts = append(opts, conf.UseEnv())
	}
	if err := conf.Load(path, &cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Section is a config block whose body lives in a separate file, referenced
// from the main config. Unmarshalling the main file fills File; Hydrate then
// parses the referenced file into Value.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate resolves File against base, runs loader on the result, and stores
// the parsed value plus the resolved path back on the section. A section
// without a File is left untouched.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}
