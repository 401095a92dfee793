package rimage

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/TimingSpace/ImageFlow/utils"
)

// DepthPath returns the file holding the depth map of the given pose id,
// <dir>/<id><suffix><ext>.
func DepthPath(dir, id, suffix, ext string) string {
	return filepath.Join(dir, id+suffix+ext)
}

// ReadDepthMap reads a depth map from a NumPy array file.
func ReadDepthMap(fn string) (*DepthMap, error) {
	m, err := utils.ReadNpyFile(fn)
	if err != nil {
		return nil, err
	}
	dm, err := NewDepthMapFromDense(m)
	if err != nil {
		return nil, errors.Wrapf(err, "bad depth map %q", fn)
	}
	return dm, nil
}

// WriteDepthMap writes dm to a NumPy array file.
func WriteDepthMap(fn string, dm *DepthMap) error {
	return utils.WriteNpyFile(fn, dm.Dense())
}
