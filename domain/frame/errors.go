package frame

import "fmt"

// ReshapeError reports a buffer whose length does not match the requested shape.
type ReshapeError struct {
	Shape Shape
	Len   int
}

func (e *ReshapeError) Error() string {
	if !e.Shape.Valid() {
		return fmt.Sprintf("cannot reshape %d values into %v: dimensions must be positive", e.Len, e.Shape)
	}
	if e.Shape.Len() < 0 {
		return fmt.Sprintf("cannot reshape %d values into %v: dimensions too large", e.Len, e.Shape)
	}
	return fmt.Sprintf("cannot reshape %d values into %v (needs %d)", e.Len, e.Shape, e.Shape.Len())
}
