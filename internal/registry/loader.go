package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"agentd/internal/config"
	"agentd/internal/errs"
)

// ModelExt is the file extension recognized by directory discovery.
const ModelExt = ".gguf"

// discoveredContextSize is assumed for files found without configuration.
const discoveredContextSize = 4096

// Discover scans dir for *.gguf files and names each by its filename minus extension.
// A missing directory yields an empty result.
func Discover(dir string) (map[string]config.ModelEntry, error) {
	models := map[string]config.ModelEntry{}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return models, nil
	}
	if err != nil {
		return nil, errs.IO(err, "read dir %s", dir)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ModelExt) {
			continue
		}
		id := name[:len(name)-len(ModelExt)]
		if id == "" {
			continue
		}
		desc := fmt.Sprintf("Auto-discovered model: %s", name)
		ctx := discoveredContextSize
		models[id] = config.ModelEntry{File: name, Description: &desc, ContextSize: &ctx}
	}
	return models, nil
}

// sortedNames returns the keys of m in lexical order.
func sortedNames(m map[string]config.ModelEntry) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
