package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ngenohkevin/taskrunner/config"
	"github.com/ngenohkevin/taskrunner/internal/catalog"
)

// ResolveEnabled filters the declared task list down to names that are
// enabled and present in the catalog, preserving source order and
// duplicates. Malformed entries and unknown names are skipped with a
// warning on warn; neither is fatal.
func ResolveEnabled(tf *config.TasksFile, cat *catalog.Catalog, warn io.Writer) []string {
	var enabled []string

	for _, raw := range tf.Entries {
		// null unmarshals into the zero entry without error
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			fmt.Fprintln(warn, "[WARN] Skipping malformed task entry (not a {name, enabled} object).")
			continue
		}

		var entry config.TaskConfigEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			fmt.Fprintln(warn, "[WARN] Skipping malformed task entry (not a {name, enabled} object).")
			continue
		}

		if entry.Name == "" || !entry.Enabled {
			continue
		}

		if _, ok := cat.Lookup(entry.Name); !ok {
			fmt.Fprintf(warn, "[WARN] Task '%s' is enabled in config but not defined in the catalog.\n", entry.Name)
			continue
		}

		enabled = append(enabled, entry.Name)
	}

	return enabled
}
