package guardrails

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// manifestFileNames are the accepted manifest file names inside a
// guardrail subdirectory, tried in order.
var manifestFileNames = []string{"guardrail.yaml", "guardrail.yml"}

// Loader loads guardrail manifests from one or more root directories.
// Loading is soft-failing: a subdirectory with no manifest or with a
// malformed manifest is skipped with a logged warning, never aborting
// the rest of the load.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With("component", "guardrails.loader")}
}

// Load merges guardrails from the primary root and the extra roots, in
// that fixed priority order. Within a root, subdirectories are visited
// in lexical order so downstream rendering and compilation order is
// reproducible. The first occurrence of a guardrail name wins; later
// duplicates are logged and dropped.
//
// A root that does not exist is skipped silently: absent extra_dirs and
// a workspace without a guardrails directory are both normal.
func (l *Loader) Load(root string, extraDirs ...string) []*Guardrail {
	var catalog []*Guardrail
	seen := make(map[string]string) // name -> source path

	roots := append([]string{root}, extraDirs...)
	for _, dir := range roots {
		if dir == "" {
			continue
		}
		for _, g := range l.loadRoot(dir) {
			if prev, dup := seen[g.Name]; dup {
				l.logger.Warn("duplicate guardrail name, keeping first",
					"name", g.Name,
					"kept", prev,
					"dropped", g.Source,
				)
				continue
			}
			seen[g.Name] = g.Source
			catalog = append(catalog, g)
		}
	}

	return catalog
}

// loadRoot loads every guardrail under one root directory.
func (l *Loader) loadRoot(root string) []*Guardrail {
	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("cannot read guardrails directory", "dir", root, "error", err)
		}
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var loaded []*Guardrail
	for _, name := range names {
		dir := filepath.Join(root, name)
		manifest := findManifest(dir)
		if manifest == "" {
			l.logger.Warn("guardrail directory has no manifest, skipping", "dir", dir)
			continue
		}

		g, err := ParseManifest(manifest)
		if err != nil {
			l.logger.Warn("skipping malformed guardrail manifest", "path", manifest, "error", err)
			continue
		}

		l.logger.Debug("loaded guardrail",
			"name", g.Name,
			"version", g.Version,
			"rules", len(g.Rules),
			"source", manifest,
		)
		loaded = append(loaded, g)
	}

	return loaded
}

// findManifest returns the path of the manifest file inside a guardrail
// directory, or empty if none of the accepted names exist.
func findManifest(dir string) string {
	for _, name := range manifestFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}
