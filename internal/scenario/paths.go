package scenario

import (
	"context"
	"io/fs"
	"slices"
	"strings"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"
)

const streamBufferSize = 64

//nolint:gochecknoglobals // immutable list of directories never worth walking.
var skipDirs = []string{
	".git",
	"node_modules",
	"vendor",
	".cache",
}

func isSkippedDir(name string) bool {
	return slices.ContainsFunc(skipDirs, func(s string) bool { return strings.EqualFold(name, s) })
}

// Discover walks root and streams the paths of JSON and YAML files over the
// returned channel. The channel is closed when the walk completes or ctx is
// canceled. The files are not parsed; use Load on each.
func Discover(ctx context.Context, root string) <-chan string {
	out := make(chan string, streamBufferSize)
	go func() {
		defer close(out)
		conf := fastwalk.DefaultConfig
		err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // Skip unreadable entries.
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if d.IsDir() {
				if path != root && isSkippedDir(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if !isScenarioFile(path) {
				return nil
			}
			select {
			case out <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			logrus.Debugf("scenario: walk %s: %v", root, err)
		}
	}()
	return out
}

// LoadAll loads every scenario Discover finds under root, sorted by path.
// Files that fail to load are returned in errs keyed by path.
func LoadAll(ctx context.Context, root string) ([]Entry, map[string]error) {
	var entries []Entry
	errs := make(map[string]error)
	for path := range Discover(ctx, root) {
		sc, err := Load(path)
		if err != nil {
			errs[path] = err
			continue
		}
		entries = append(entries, Entry{Path: path, Scenario: sc})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return entries, errs
}

// Entry is a scenario found on disk.
type Entry struct {
	Path     string
	Scenario Scenario
}
