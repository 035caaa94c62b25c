package transform

import (
	"fmt"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

// TransformError reports a frame the selected model cannot restore.
type TransformError struct {
	Model  string
	Shape  frame.Shape
	Reason string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s on %v: %s", e.Model, e.Shape, e.Reason)
}
