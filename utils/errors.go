package utils

import (
	"github.com/pkg/errors"
)

// NewShapeMismatchError is used when two grids that must line up do not.
func NewShapeMismatchError(gotRows, gotCols, wantRows, wantCols int) error {
	return errors.Errorf("shape mismatch %dx%d != %dx%d", gotRows, gotCols, wantRows, wantCols)
}

// NewSizeMismatchError is used when a point or value count does not fit an image.
func NewSizeMismatchError(what string, got, height, width int) error {
	return errors.Errorf("%s has %d entries but the image is %dx%d", what, got, height, width)
}
