package view

import (
	"image"

	"github.com/soocke/pv-viewer-go/ui/images"
	"github.com/soocke/pv-viewer-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// TransformChoice is one entry of the transform selector.
type TransformChoice struct {
	Name  string
	Label string
}

// SurfaceView abstracts an image display with its transform selector and status line.
type SurfaceView interface {
	UpdateImage(img image.Image)
	SetStatus(text string)
}

type surfaceView struct {
	imageLabel  *LabelWidget
	statusLabel *TLabelWidget
	selector    *TComboboxWidget
	photo       *Img // current Tk photo, deleted before replacement
}

// NewSurfaceView creates the selector, image and status widgets in parent
// starting at row and returns the view and the next free row. onSelect
// receives the chosen transform name.
func NewSurfaceView(parent *Window, row int, choices []TransformChoice, onSelect func(name string)) (SurfaceView, int) {
	v := &surfaceView{}
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}
	if len(labels) == 0 {
		labels = []string{"<none>"}
	}
	Grid(parent.Label(Txt("Transform"), Anchor("w")), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	v.selector = parent.TCombobox(Values(labels), Width(32), State("readonly"))
	Grid(v.selector, Row(row), Column(1), Columnspan(3), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.selector.Current(0)
	Bind(v.selector, "<<ComboboxSelected>>", Command(func() {
		idx := indexOf(v.selector.Current(nil), len(choices))
		if idx >= 0 && onSelect != nil {
			onSelect(choices[idx].Name)
		}
	}))
	row++

	v.photo = NewPhoto(Data(images.EncodePNG(placeholder())))
	v.imageLabel = parent.Label(Image(v.photo), Borderwidth(1), Relief("sunken"))
	Grid(v.imageLabel, Row(row), Column(0), Columnspan(5), Sticky("nsew"), Padx("0.4m"), Pady("0.4m"))
	row++

	v.statusLabel = parent.TLabel(Txt("Transform: None"), Style(theme.StyleStateLabel))
	Grid(v.statusLabel, Row(row), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return v, row
}

func placeholder() image.Image { return image.NewGray(image.Rect(0, 0, 256, 256)) }

func (v *surfaceView) UpdateImage(img image.Image) {
	if v == nil || v.imageLabel == nil || img == nil {
		return
	}
	v.setPhoto(images.EncodePNG(img))
}

func (v *surfaceView) setPhoto(png []byte) {
	// Replace previous photo to avoid retaining obsolete pixel buffers.
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(png))
	v.imageLabel.Configure(Image(v.photo))
}

func (v *surfaceView) SetStatus(text string) {
	if v != nil && v.statusLabel != nil {
		v.statusLabel.Configure(Txt(text))
	}
}
