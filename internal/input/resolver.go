package input

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/contribproof/internal/model"
	"go.uber.org/zap"
)

// Resolver locates the single eligible input record in a working directory
type Resolver struct {
	prefix string
	logger *zap.Logger
}

// NewResolver creates a resolver for records named with the given prefix
func NewResolver(prefix string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		prefix: prefix,
		logger: logger,
	}
}

// Resolve returns the path of the input record in dir.
// Only regular files whose name starts with the prefix are eligible. When several
// files match, the lexicographically smallest name wins and the rest are logged.
func (r *Resolver) Resolve(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &model.NoInputError{Dir: dir, Prefix: r.prefix, Err: err}
	}

	var candidates []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, r.prefix) {
			continue
		}

		// Stat follows symlinks, so a link to a regular file is eligible
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			r.logger.Debug("Skipping unreadable candidate", zap.String("name", name), zap.Error(err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		candidates = append(candidates, name)
	}

	if len(candidates) == 0 {
		return "", &model.NoInputError{Dir: dir, Prefix: r.prefix}
	}

	sort.Strings(candidates)
	if len(candidates) > 1 {
		r.logger.Warn("Multiple input records found, using the first by name",
			zap.String("selected", candidates[0]),
			zap.Strings("ignored", candidates[1:]))
	}

	return filepath.Join(dir, candidates[0]), nil
}

// CheckDir fails with NoInputError when dir is missing, not a directory, or empty
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return &model.NoInputError{Dir: dir, Err: err}
	}
	if !info.IsDir() {
		return &model.NoInputError{Dir: dir, Err: fmt.Errorf("not a directory")}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return &model.NoInputError{Dir: dir, Err: err}
	}
	if len(entries) == 0 {
		return &model.NoInputError{Dir: dir, Err: fmt.Errorf("directory is empty")}
	}
	return nil
}
