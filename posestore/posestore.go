// Package posestore resolves camera poses by identifier from a pose table.
//
// A data set carries two files: a JSON document whose named array lists the
// pose identifiers in table order, and a NumPy array with one
// [tx, ty, tz, qx, qy, qz, qw] row per identifier.
package posestore

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"github.com/TimingSpace/ImageFlow/spatialmath"
	"github.com/TimingSpace/ImageFlow/utils"
)

// DefaultKey is the JSON key holding the identifier list.
const DefaultKey = "pose_name"

// fallbackKey is used when no key is given.
const fallbackKey = "ID"

// ErrUnknownPose is returned when an identifier is not in the table.
var ErrUnknownPose = errors.New("unknown pose id")

// Store maps pose identifiers to pose table rows. It is immutable once built.
type Store struct {
	ids   []string
	index map[string]int
	poses []spatialmath.Pose
}

// New builds a store from identifiers and their pose table rows.
func New(ids []string, rows mat.Matrix) (*Store, error) {
	r, c := rows.Dims()
	if c != spatialmath.PoseTableColumns {
		return nil, errors.Errorf("pose table has %d columns, need %d", c, spatialmath.PoseTableColumns)
	}
	if r != len(ids) {
		return nil, errors.Errorf("pose table has %d rows for %d ids", r, len(ids))
	}

	s := &Store{
		ids:   append([]string(nil), ids...),
		index: make(map[string]int, len(ids)),
		poses: make([]spatialmath.Pose, 0, r),
	}
	row := make([]float64, c)
	for i, id := range ids {
		// the first occurrence wins
		if _, ok := s.index[id]; !ok {
			s.index[id] = i
		}
		mat.Row(row, i, rows)
		p, err := spatialmath.NewPoseFromRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "pose %q", id)
		}
		s.poses = append(s.poses, p)
	}
	return s, nil
}

// Load reads the identifier list under key in namesPath and the pose table
// in dataPath. An empty key means "ID".
func Load(namesPath, key, dataPath string) (*Store, error) {
	ids, err := LoadIDsJSON(namesPath, key)
	if err != nil {
		return nil, err
	}
	rows, err := utils.ReadNpyFile(dataPath)
	if err != nil {
		return nil, err
	}
	s, err := New(ids, rows)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load poses from %q and %q", namesPath, dataPath)
	}
	return s, nil
}

// LoadIDsJSON reads the string array under key from a JSON document.
func LoadIDsJSON(fn, key string) ([]string, error) {
	if key == "" {
		key = fallbackKey
	}
	//nolint:gosec
	raw, err := os.ReadFile(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read pose names %q", fn)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "cannot parse pose names %q", fn)
	}
	list, ok := doc[key]
	if !ok {
		return nil, errors.Errorf("pose names %q have no key %q", fn, key)
	}
	var ids []string
	if err := json.Unmarshal(list, &ids); err != nil {
		return nil, errors.Wrapf(err, "key %q in %q is not a list of strings", key, fn)
	}
	return ids, nil
}

// LoadIDsText reads one identifier per line. Trailing whitespace, including a
// carriage return, is dropped; blank lines are skipped.
func LoadIDsText(fn string) ([]string, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open pose names %q", fn)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimRight(scanner.Text(), " \t\r")
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot read pose names %q", fn)
	}
	return ids, nil
}

// Pose returns the pose stored for id.
func (s *Store) Pose(id string) (spatialmath.Pose, error) {
	i, ok := s.index[id]
	if !ok {
		return spatialmath.Pose{}, errors.Wrapf(ErrUnknownPose, "%q", id)
	}
	return s.poses[i], nil
}

// CameraPose resolves id and derives its camera transform.
func (s *Store) CameraPose(id string) (spatialmath.Pose, *spatialmath.CameraPose, error) {
	p, err := s.Pose(id)
	if err != nil {
		return spatialmath.Pose{}, nil, err
	}
	cp, err := spatialmath.NewCameraPose(p)
	if err != nil {
		return spatialmath.Pose{}, nil, errors.Wrapf(err, "pose %q", id)
	}
	return p, cp, nil
}

// IDs returns the identifiers in table order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Len returns the number of poses.
func (s *Store) Len() int {
	return len(s.ids)
}
