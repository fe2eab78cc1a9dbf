package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/penwyp/go-eld-planner/internal/core/constants"
	"github.com/penwyp/go-eld-planner/internal/util"
)

const sheetImageName = "eld-sheet"

// Meta is the per-document text printed in headers and footers
type Meta struct {
	TripID     int
	DriverName string
}

// Result describes a finished export
type Result struct {
	Filename string
	Location string
	Pages    int
	Size     int
}

// Saver receives a complete PDF. It is never called for a failed export.
type Saver interface {
	Save(filename string, data []byte) (string, error)
}

// SaverFunc adapts a function to Saver
type SaverFunc func(filename string, data []byte) (string, error)

func (f SaverFunc) Save(filename string, data []byte) (string, error) {
	return f(filename, data)
}

// DirSaver writes PDFs into a directory
type DirSaver struct {
	Dir string
}

// Save writes through a temp file and renames so readers never see a
// partial document.
func (d DirSaver) Save(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.Dir, ".eld-export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close pdf: %w", err)
	}

	path := filepath.Join(d.Dir, filename)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move pdf into place: %w", err)
	}
	return path, nil
}

// Filename is eld-log-trip-<id>-<YYYY-MM-DD>.pdf, dated in now's own
// location so it agrees with the footer date.
func Filename(tripID int, now time.Time) string {
	return fmt.Sprintf("eld-log-trip-%d-%s.pdf", tripID, now.Format("2006-01-02"))
}

// Exporter turns a captured region into a paginated PDF. One export runs at
// a time per Exporter.
type Exporter struct {
	layout   PageLayout
	saver    Saver
	now      func() time.Time
	compress bool
	inFlight atomic.Bool
}

// Option configures an Exporter
type Option func(*Exporter)

// WithLayout overrides the A4 layout
func WithLayout(layout PageLayout) Option {
	return func(e *Exporter) { e.layout = layout }
}

// WithClock sets the clock used for the filename and footer date
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithCompression toggles PDF stream compression
func WithCompression(on bool) Option {
	return func(e *Exporter) { e.compress = on }
}

// NewExporter creates an exporter delivering to saver, which may be nil
// when every call goes through ExportTo.
func NewExporter(saver Saver, opts ...Option) *Exporter {
	e := &Exporter{
		layout:   A4(),
		saver:    saver,
		now:      util.GetTimeProvider().Now,
		compress: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Busy reports whether an export is running
func (e *Exporter) Busy() bool {
	return e.inFlight.Load()
}

// Export captures region, lays it out over as many pages as needed and hands
// the finished document to the saver. It returns ErrExportInProgress without
// side effects if another export is running. Once started it runs to
// completion; ctx cancellation is ignored.
func (e *Exporter) Export(ctx context.Context, region Region, meta Meta) (Result, error) {
	return e.ExportTo(ctx, region, meta, e.saver)
}

// ExportTo is Export delivering to saver instead of the exporter's own.
// The in-progress guard is shared with Export.
func (e *Exporter) ExportTo(ctx context.Context, region Region, meta Meta, saver Saver) (Result, error) {
	if saver == nil {
		return Result{}, errors.New("export: no saver configured")
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrExportInProgress
	}
	defer e.inFlight.Store(false)

	started := time.Now()
	raster, err := region.Capture(context.WithoutCancel(ctx))
	if err != nil {
		var captureErr *CaptureError
		if !errors.As(err, &captureErr) {
			err = &CaptureError{Reason: "capture failed", Err: err}
		}
		util.LogErrorf("Export of trip %d failed: %v", meta.TripID, err)
		return Result{}, err
	}

	now := e.now()
	data, pages, err := e.render(raster, meta, now)
	if err != nil {
		util.LogErrorf("Export of trip %d failed: %v", meta.TripID, err)
		return Result{}, err
	}

	filename := Filename(meta.TripID, now)
	location, err := saver.Save(filename, data)
	if err != nil {
		return Result{}, fmt.Errorf("save %s: %w", filename, err)
	}

	util.LogInfof("Exported trip %d to %s: %d pages, %d bytes in %v", meta.TripID, location, pages, len(data), time.Since(started))
	return Result{Filename: filename, Location: location, Pages: pages, Size: len(data)}, nil
}

// render lays the raster out page by page. The plan is computed before any
// page is drawn so every footer carries the real total.
func (e *Exporter) render(raster *Raster, meta Meta, now time.Time) ([]byte, int, error) {
	l := e.layout
	imgW := l.ContentWidth()
	imgH := l.ImageHeight(raster.Width, raster.Height)
	plan := l.Plan(imgH)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetCompression(e.compress)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(constants.DocumentTitle, true)
	pdf.SetCreator(constants.DocumentGeneratedBy, true)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(sheetImageName, opts, bytes.NewReader(raster.PNG))

	driver := meta.DriverName
	if driver == "" {
		driver = constants.DefaultDriverName
	}
	// core fonts are cp1252
	driver = pdf.UnicodeTranslatorFromDescriptor("")(driver)

	for _, page := range plan {
		pdf.AddPage()

		pdf.ClipRect(l.Left, l.Top, imgW, l.ContentHeight(), false)
		pdf.ImageOptions(sheetImageName, l.Left, page.ImageY, imgW, imgH, false, opts, 0, "")
		pdf.ClipEnd()

		drawHeader(pdf, l, meta.TripID, driver, page.PageNumber)
		drawFooter(pdf, l, page.PageNumber, len(plan), now)
	}

	if err := pdf.Error(); err != nil {
		return nil, 0, fmt.Errorf("build pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), pdf.PageCount(), nil
}

func drawHeader(pdf *fpdf.Fpdf, l PageLayout, tripID int, driver string, pageNumber int) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(l.Left, l.Top-5, fmt.Sprintf("Trip : %d", tripID))
	pdf.Text(l.Left, l.Top-2, "Driver: "+driver)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	centered(pdf, l.PageWidth/2, l.Top-5, constants.DocumentTitle)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 100, 100)
	rightAligned(pdf, l.PageWidth-l.Right, l.Top-5, fmt.Sprintf("Page %d", pageNumber))

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(l.Left, l.Top-1, l.PageWidth-l.Right, l.Top-1)
}

func drawFooter(pdf *fpdf.Fpdf, l PageLayout, pageNumber, pageCount int, now time.Time) {
	lineY := l.PageHeight - 15
	textY := l.PageHeight - 10

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(l.Left, lineY, l.PageWidth-l.Right, lineY)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(l.Left, textY, constants.DocumentGeneratedBy)
	centered(pdf, l.PageWidth/2, textY, fmt.Sprintf("Page %d of %d", pageNumber, pageCount))
	rightAligned(pdf, l.PageWidth-l.Right, textY, now.Format("1/2/2006"))
}

func centered(pdf *fpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s)/2, y, s)
}

func rightAligned(pdf *fpdf.Fpdf, x, y float64, s string) {
	pdf.Text(x-pdf.GetStringWidth(s), y, s)
}
