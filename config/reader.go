package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"github.com/TimingSpace/ImageFlow/utils"
)

// Read reads a config from the given file. Environment variables referenced
// as $VAR or ${VAR} are expanded before decoding. Fields missing from the file
// keep their Default values and a leading ~ in the data and output
// directories is expanded. The result is not validated.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", filePath)
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader decodes a config from r on top of Default. originalPath records
// where, if applicable, the data came from.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	cfg := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	for _, dir := range []*string{&cfg.DataDir, &cfg.OutDir} {
		expanded, err := utils.ExpandHomeDir(*dir)
		if err != nil {
			return nil, err
		}
		*dir = expanded
	}
	cfg.ConfigFilePath = originalPath
	return cfg, nil
}
