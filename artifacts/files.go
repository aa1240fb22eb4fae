package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// genesisRecordName is the one record written bare (not wrapped in a
// {dataKey: value} object) by the filesystem target, so the output file
// is directly loadable by the chain client.
const genesisRecordName = "besu-genesis"

// FileTarget writes records under a timestamped run directory, one file
// per record. Sensitive records get 0600 permissions.
type FileTarget struct {
	dir string
}

// NewFileTarget creates the run directory under root and returns the
// target. The directory name embeds the invocation time so repeated runs
// never collide.
func NewFileTarget(root string) (*FileTarget, error) {
	dir := filepath.Join(root, "artifacts-"+time.Now().Format("20060102-150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory %s: %w", dir, err)
	}
	return &FileTarget{dir: dir}, nil
}

// Dir returns the run directory path.
func (t *FileTarget) Dir() string {
	return t.dir
}

// Write stores every record. Non-genesis records are wrapped as
// {"<dataKey>": "<value>"}; the genesis record is written as the bare
// document.
func (t *FileTarget) Write(records []Record) error {
	for _, rec := range records {
		var payload []byte
		if rec.Name == genesisRecordName {
			payload = []byte(rec.Value)
		} else {
			wrapped, err := json.Marshal(map[string]string{rec.DataKey: rec.Value})
			if err != nil {
				return fmt.Errorf("serialize record %s: %w", rec.Name, err)
			}
			payload = wrapped
		}
		perm := os.FileMode(0o644)
		if rec.Sensitive {
			perm = 0o600
		}
		path := filepath.Join(t.dir, rec.Name+".json")
		if err := os.WriteFile(path, payload, perm); err != nil {
			return fmt.Errorf("write record %s: %w", rec.Name, err)
		}
	}
	return nil
}
