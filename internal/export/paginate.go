package export

// pageEpsilon absorbs float error in the proportional image height so an
// exact multiple of the content height does not produce a blank page.
const pageEpsilon = 1e-6

// PageLayout is a page size and its margins, in millimetres
type PageLayout struct {
	PageWidth  float64
	PageHeight float64
	Top        float64
	Right      float64
	Bottom     float64
	Left       float64
}

// A4 is portrait A4 with the log sheet margins
func A4() PageLayout {
	return PageLayout{
		PageWidth:  210,
		PageHeight: 297,
		Top:        20,
		Right:      10,
		Bottom:     20,
		Left:       10,
	}
}

func (l PageLayout) ContentWidth() float64 {
	return l.PageWidth - l.Left - l.Right
}

func (l PageLayout) ContentHeight() float64 {
	return l.PageHeight - l.Top - l.Bottom
}

// ImageHeight scales a raster of pxWidth x pxHeight to the content width
func (l PageLayout) ImageHeight(pxWidth, pxHeight int) float64 {
	if pxWidth <= 0 {
		return 0
	}
	return float64(pxHeight) * l.ContentWidth() / float64(pxWidth)
}

// PaginationState tracks one pass over the image. RemainingHeight goes
// negative on the final page.
type PaginationState struct {
	PageNumber      int
	YOffset         float64
	RemainingHeight float64
}

// PagePlacement is where the full image is drawn on one page so that its
// next slice lands in the content area.
type PagePlacement struct {
	PageNumber int
	ImageY     float64
}

// Plan walks the image top to bottom, one content-height slice per page.
// It always yields at least one page.
func (l PageLayout) Plan(imageHeight float64) []PagePlacement {
	contentHeight := l.ContentHeight()
	state := PaginationState{
		PageNumber:      1,
		YOffset:         l.Top,
		RemainingHeight: imageHeight,
	}

	pages := []PagePlacement{{PageNumber: state.PageNumber, ImageY: state.YOffset}}
	state.RemainingHeight -= contentHeight

	for state.RemainingHeight > pageEpsilon && contentHeight > 0 {
		state.PageNumber++
		state.YOffset = state.RemainingHeight - imageHeight + l.Top
		pages = append(pages, PagePlacement{PageNumber: state.PageNumber, ImageY: state.YOffset})
		state.RemainingHeight -= contentHeight
	}

	return pages
}
