package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/smoldb/smoldb/internal/errs"
)

const configFileName = "config.json"

type collectionConfig struct {
	Params map[string]string `json:"params"`
}

// loadConfigJSON reads dir/config.json, returning an error if it is
// absent or malformed. TableOfContent.Load treats that error as "not
// a collection directory" and skips it.
func loadConfigJSON(dir string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		return nil, err
	}
	var cfg collectionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg.Params, nil
}

// writeConfigJSON persists a collection's params to dir/config.json.
func writeConfigJSON(dir string, params map[string]string) error {
	cfg := collectionConfig{Params: params}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errs.Wrap(errs.BadInput, err, "catalog: marshaling config.json")
	}
	if err := os.WriteFile(filepath.Join(dir, configFileName), data, 0o644); err != nil {
		return errs.Wrapf(errs.StorageError, err, "catalog: writing config.json in %s", dir)
	}
	return nil
}
