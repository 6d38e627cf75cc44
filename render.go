package unwatch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	// Painter-supported formats, decoded only to validate and size images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"
)

// imageMaxWidthFraction caps embedded images at this share of the printable
// width; narrower images keep their intrinsic size, centered.
const imageMaxWidthFraction = 0.6

// screenDPI converts intrinsic pixel dimensions to page points.
const screenDPI = 96.0

// Renderer lays a parsed markdown document out onto fixed-size pages,
// delegating glyph and image painting to fpdf. Rendering is total: malformed
// markdown degrades to paragraphs, characters outside the painter repertoire
// are replaced, and unreachable images are skipped.
type Renderer struct {
	fetcher      ImageFetcher
	imageTimeout time.Duration
	creationTime time.Time // zero = wall clock at render time
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithImageFetcher replaces the default HTTP image fetcher.
func WithImageFetcher(f ImageFetcher) RendererOption {
	return func(r *Renderer) {
		r.fetcher = f
	}
}

// WithImageTimeout bounds each remote image fetch.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithImageTimeout(d time.Duration) RendererOption {
	if d <= 0 {
		panic("unwatch: WithImageTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.imageTimeout = d
	}
}

// WithCreationTime pins the document's embedded timestamps, making output
// byte-for-byte reproducible.
func WithCreationTime(t time.Time) RendererOption {
	return func(r *Renderer) {
		r.creationTime = t
	}
}

// NewRenderer creates a renderer with default configuration.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		fetcher:      NewImageFetcher(nil),
		imageTimeout: DefaultImageTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render paginates the markdown document under the given layout and returns
// the PDF bytes. The only error source is the painter itself; document
// content never fails a render.
func (r *Renderer) Render(markdown string, cfg LayoutConfig) ([]byte, error) {
	t := deriveTypography(cfg)
	blocks := ParseBlocks(markdown)

	doc := fpdf.New("P", "pt", "Letter", "")
	// Without catalog sorting the painter emits font objects in map
	// iteration order, so two renders of the same input can differ.
	doc.SetCatalogSort(true)
	if !r.creationTime.IsZero() {
		doc.SetCreationDate(r.creationTime)
		doc.SetModificationDate(r.creationTime)
	}
	doc.SetMargins(pageMarginPt, pageMarginPt, pageMarginPt)
	doc.SetAutoPageBreak(true, pageMarginPt)
	doc.AddPage()

	// Maps text into the painter's cp1252 repertoire; unsupported characters
	// are replaced rather than failing the render.
	translate := doc.UnicodeTranslatorFromDescriptor("")

	for _, block := range blocks {
		switch block.Kind {
		case BlockHeading:
			r.paintHeading(doc, t, translate, block)
		case BlockParagraph:
			r.paintRuns(doc, t, translate, block.Runs)
			doc.Ln(t.bodyLine)
			doc.Ln(t.bodyLine * 0.5)
		case BlockBullet:
			r.paintBullet(doc, t, translate, block)
		case BlockRule:
			r.paintRule(doc, t)
		case BlockImage:
			r.paintImage(doc, t, block.URL)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("painting document: %w", err)
	}
	return buf.Bytes(), nil
}

// boldStyle returns the painter style for bold text. The dingbats family
// has no bold variant.
func boldStyle(family string) string {
	if family == "ZapfDingbats" {
		return ""
	}
	return "B"
}

// paintHeading draws a heading with extra leading before and after,
// proportional to the base line height.
func (r *Renderer) paintHeading(doc *fpdf.Fpdf, t typography, translate func(string) string, block Block) {
	size := t.headingSize(block.Level)
	lineHt := size * lineHeightMultiplier

	doc.Ln(t.bodyLine * 0.75)
	doc.SetFont(t.family, boldStyle(t.family), size)
	doc.MultiCell(0, lineHt, translate(block.Text()), "", "L", false)
	doc.Ln(t.bodyLine * 0.25)
}

// paintRuns flows styled runs as wrapped body text, leaving the cursor at
// the end of the last line.
func (r *Renderer) paintRuns(doc *fpdf.Fpdf, t typography, translate func(string) string, runs []Run) {
	for _, run := range runs {
		style := ""
		if run.Bold {
			style = boldStyle(t.family)
		}
		doc.SetFont(t.family, style, t.bodySize)
		doc.Write(t.bodyLine, translate(run.Text))
	}
}

// bulletIndentPt is the left inset for list items.
const bulletIndentPt = 18.0

// paintBullet draws one list item with a hanging indent.
func (r *Renderer) paintBullet(doc *fpdf.Fpdf, t typography, translate func(string) string, block Block) {
	doc.SetFont(t.family, "", t.bodySize)
	doc.SetX(pageMarginPt + bulletIndentPt)
	doc.Write(t.bodyLine, translate("• "))

	// Wrapped continuation lines align under the text, not the bullet glyph.
	doc.SetLeftMargin(pageMarginPt + bulletIndentPt)
	r.paintRuns(doc, t, translate, block.Runs)
	doc.SetLeftMargin(pageMarginPt)

	doc.Ln(t.bodyLine)
	doc.Ln(t.bodyLine * 0.25)
}

// paintRule draws a full-width line with half a line of spacing each side.
func (r *Renderer) paintRule(doc *fpdf.Fpdf, t typography) {
	doc.Ln(t.bodyLine * 0.5)
	y := doc.GetY()
	doc.Line(pageMarginPt, y, pageWidthPt-pageMarginPt, y)
	doc.Ln(t.bodyLine * 0.5)
}

// paintImage fetches, scales, centers, and embeds a remote image. Any
// failure skips the block and leaves the cursor unchanged; an unreachable
// image must never abort the render.
func (r *Renderer) paintImage(doc *fpdf.Fpdf, t typography, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.imageTimeout)
	defer cancel()

	data, format, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return
	}

	// Validate and size before handing bytes to the painter; a decode error
	// inside the painter would poison the whole document.
	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || imgCfg.Width <= 0 || imgCfg.Height <= 0 {
		return
	}

	width := float64(imgCfg.Width) * 72.0 / screenDPI
	if maxWidth := printableWidth() * imageMaxWidthFraction; width > maxWidth {
		width = maxWidth
	}
	x := pageMarginPt + (printableWidth()-width)/2

	opts := fpdf.ImageOptions{ImageType: format, ReadDpi: false}
	doc.RegisterImageOptionsReader(url, opts, bytes.NewReader(data))
	doc.ImageOptions(url, x, 0, width, 0, true, opts, 0, "")
	doc.Ln(t.bodyLine)
}
