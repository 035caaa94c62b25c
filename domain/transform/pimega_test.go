package transform

import (
	"errors"
	"testing"

	"github.com/soocke/pv-viewer-go/domain/frame"
)

func TestChipLayout_InsertsGaps(t *testing.T) {
	l := ChipLayout{Model: "test", Chip: 2, Chips: 2, Gap: 1, Fill: -1}
	raw := frame.MustFromRows([][]float64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	})
	out, err := l.Restore(raw)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	want := frame.MustFromRows([][]float64{
		{1, 2, -1, 3, 4},
		{5, 6, -1, 7, 8},
		{-1, -1, -1, -1, -1},
		{9, 10, -1, 11, 12},
		{13, 14, -1, 15, 16},
	})
	if !out.Equal(want) {
		t.Fatalf("restored mismatch:\n got=%v\nwant=%v", out.Rows(), want.Rows())
	}
	if raw.At(0, 2) != 3 {
		t.Fatalf("restore modified its input")
	}
}

func TestChipLayout_WrongShape(t *testing.T) {
	l := ChipLayout{Model: "test", Chip: 2, Chips: 2, Gap: 1}
	_, err := l.Restore(frame.MustFromRows([][]float64{{1, 2}, {3, 4}}))
	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransformError, got %v", err)
	}
	if te.Model != "test" || te.Shape != (frame.Shape{Height: 2, Width: 2}) {
		t.Fatalf("unexpected error detail %+v", te)
	}
}

func TestPinwheelLayout_PlacesQuadrants(t *testing.T) {
	p := PinwheelLayout{ChipLayout: ChipLayout{Model: "pw", Chip: 1, Chips: 1, Fill: -1}, ModuleGap: 1}
	raw := frame.MustFromRows([][]float64{
		{1, 2},
		{3, 4},
	})
	out, err := p.Restore(raw)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	want := frame.MustFromRows([][]float64{
		{1, -1, 2},
		{-1, -1, -1},
		{3, -1, 4},
	})
	if !out.Equal(want) {
		t.Fatalf("pinwheel mismatch:\n got=%v\nwant=%v", out.Rows(), want.Rows())
	}
}

func TestPinwheelLayout_RotatesModules(t *testing.T) {
	p := PinwheelLayout{ChipLayout: ChipLayout{Model: "pw", Chip: 2, Chips: 1}, ModuleGap: 0}
	raw := frame.MustFromRows([][]float64{
		{1, 2, 5, 6},
		{3, 4, 7, 8},
		{9, 10, 13, 14},
		{11, 12, 15, 16},
	})
	out, err := p.Restore(raw)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	// top-left unrotated, top-right one turn, bottom-right two, bottom-left three.
	want := frame.MustFromRows([][]float64{
		{1, 2, 7, 5},
		{3, 4, 8, 6},
		{10, 12, 16, 15},
		{9, 11, 14, 13},
	})
	if !out.Equal(want) {
		t.Fatalf("rotation mismatch:\n got=%v\nwant=%v", out.Rows(), want.Rows())
	}
}

func TestDefaultModels_RejectSmallFrames(t *testing.T) {
	small := frame.MustFromRows([][]float64{{1, 2}, {3, 4}})
	for _, name := range []string{Model450D, Model540D} {
		fn, _ := Default().Get(name)
		if _, err := fn(small); err == nil {
			t.Fatalf("%s accepted a 2x2 frame", name)
		}
	}
}

func TestRestore450D_OutputShape(t *testing.T) {
	side := layout450D.RawSide()
	raw, err := frame.New(side, side, make([]float64, side*side))
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	out, err := Restore450D(raw)
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	want := 1536 + 5*3
	if out.Shape() != (frame.Shape{Height: want, Width: want}) {
		t.Fatalf("unexpected restored shape %v", out.Shape())
	}
}
