package pdf

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jackzampolin/imposer/internal/imposition"
)

const (
	textFont     = "Helvetica"
	textFontName = "F1"

	firstChar = 32
	lastChar  = 126
)

// ErrClosed is returned for writes to a closed or discarded output.
var ErrClosed = errors.New("output document is closed")

// page is an output page under construction.
type page struct {
	content  contentCreator
	xobjects types.Dict
	fonts    types.Dict
}

// Output is an imposed PDF under construction.
type Output struct {
	src    *Source
	ctx    *model.Context
	file   *os.File
	path   string
	size   imposition.PageSize
	logger *slog.Logger

	pages  []*page
	forms  map[int]types.IndirectRef // source page number -> form XObject
	font   *types.IndirectRef
	closed bool
}

// Path returns the destination file.
func (o *Output) Path() string {
	return o.path
}

// Pages returns the number of pages added so far.
func (o *Output) Pages() int {
	return len(o.pages)
}

func (o *Output) current() (*page, error) {
	if o.closed {
		return nil, ErrClosed
	}
	if len(o.pages) == 0 {
		return nil, errors.New("no current page")
	}
	return o.pages[len(o.pages)-1], nil
}

// NewPage appends a blank page.
func (o *Output) NewPage() error {
	if o.closed {
		return ErrClosed
	}
	o.pages = append(o.pages, &page{xobjects: types.Dict{}, fonts: types.Dict{}})
	return nil
}

// PlacePage draws a source page on the current page under t.
func (o *Output) PlacePage(src imposition.Source, pageNr int, t imposition.Transform) error {
	p, err := o.current()
	if err != nil {
		return err
	}
	if s, ok := src.(*Source); !ok || s.path != o.src.path {
		return fmt.Errorf("%w: output was created for %s", imposition.ErrSourceRead, o.src.path)
	}
	if pageNr < 1 || pageNr > o.src.PageCount() {
		return fmt.Errorf("%w: page %d out of range 1-%d", imposition.ErrSourceRead, pageNr, o.src.PageCount())
	}

	ref, err := o.formFor(pageNr)
	if err != nil {
		return fmt.Errorf("%w: page %d: %v", imposition.ErrSourceRead, pageNr, err)
	}
	name := formName(pageNr)
	p.xobjects[name] = ref
	p.content.DrawForm(name, t)
	return nil
}

// DrawCenteredText draws text in Helvetica centred horizontally on x with its
// baseline at y.
func (o *Output) DrawCenteredText(text string, x, y, fontSize float64) error {
	p, err := o.current()
	if err != nil {
		return err
	}
	ref, err := o.ensureFont()
	if err != nil {
		return fmt.Errorf("%w: font: %v", imposition.ErrOutputWrite, err)
	}
	p.fonts[textFontName] = *ref

	width := font.TextWidth(text, textFont, int(fontSize))
	p.content.DrawText(textFontName, fontSize, x-width/2, y, text)
	return nil
}

// Close builds the page tree and writes the document.
func (o *Output) Close() error {
	if o.closed {
		return ErrClosed
	}
	o.closed = true

	if err := o.buildPageTree(); err != nil {
		o.file.Close()
		return fmt.Errorf("%w: %s: %v", imposition.ErrOutputWrite, o.path, err)
	}
	if err := api.WriteContext(o.ctx, o.file); err != nil {
		o.file.Close()
		return fmt.Errorf("%w: %s: %v", imposition.ErrOutputWrite, o.path, err)
	}
	if err := o.file.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", imposition.ErrOutputWrite, o.path, err)
	}
	o.logger.Debug("wrote PDF", "pages", len(o.pages), "forms", len(o.forms))
	return nil
}

// Discard drops the document and removes its file.
func (o *Output) Discard() error {
	if o.closed {
		return nil
	}
	o.closed = true
	o.file.Close()
	if err := os.Remove(o.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (o *Output) ensureFont() (*types.IndirectRef, error) {
	if o.font != nil {
		return o.font, nil
	}
	d := types.Dict{
		"Type":      types.Name("Font"),
		"Subtype":   types.Name("Type1"),
		"BaseFont":  types.Name(textFont),
		"Encoding":  types.Name("WinAnsiEncoding"),
		"FirstChar": types.Integer(firstChar),
		"LastChar":  types.Integer(lastChar),
		"Widths":    glyphWidths(),
	}
	ref, err := o.ctx.IndRefForNewObject(d)
	if err != nil {
		return nil, err
	}
	o.font = ref
	return ref, nil
}

// glyphWidths lists Helvetica advance widths in 1/1000 em for printable
// ASCII, which WinAnsi and Unicode encode alike.
func glyphWidths() types.Array {
	widths := make(types.Array, 0, lastChar-firstChar+1)
	for c := firstChar; c <= lastChar; c++ {
		w := font.TextWidth(string(rune(c)), textFont, 1000)
		widths = append(widths, types.Integer(int(math.Round(w))))
	}
	return widths
}

// formFor returns the form XObject for a source page, creating it on first use.
func (o *Output) formFor(pageNr int) (types.IndirectRef, error) {
	if ref, ok := o.forms[pageNr]; ok {
		return ref, nil
	}

	d, _, inh, err := o.ctx.PageDict(pageNr, false)
	if err != nil {
		return types.IndirectRef{}, err
	}
	if d == nil {
		return types.IndirectRef{}, fmt.Errorf("page %d not found", pageNr)
	}

	content, err := pageContent(o.ctx, d)
	if err != nil {
		return types.IndirectRef{}, err
	}
	res, err := pageResources(o.ctx, d, inh)
	if err != nil {
		return types.IndirectRef{}, err
	}
	bbox, err := pageBox(o.ctx, d, inh, o.src.dims[pageNr-1])
	if err != nil {
		return types.IndirectRef{}, err
	}

	sd, err := newStream(types.Dict{
		"Type":      types.Name("XObject"),
		"Subtype":   types.Name("Form"),
		"FormType":  types.Integer(1),
		"BBox":      bbox,
		"Resources": res,
	}, content)
	if err != nil {
		return types.IndirectRef{}, err
	}
	ref, err := o.ctx.IndRefForNewObject(*sd)
	if err != nil {
		return types.IndirectRef{}, err
	}
	o.forms[pageNr] = *ref
	return *ref, nil
}

// buildPageTree replaces the source's page tree with the output pages and
// drops catalog entries that point into the old pages.
func (o *Output) buildPageTree() error {
	root, err := o.ctx.Catalog()
	if err != nil {
		return err
	}
	pagesRef := root.IndirectRefEntry("Pages")
	if pagesRef == nil {
		return errors.New("catalog has no page tree")
	}
	pagesDict, err := o.ctx.DereferenceDict(*pagesRef)
	if err != nil {
		return err
	}

	mediaBox := types.Array{types.Float(0), types.Float(0), types.Float(o.size.Width), types.Float(o.size.Height)}
	kids := make(types.Array, 0, len(o.pages))
	for _, p := range o.pages {
		sd, err := newStream(types.Dict{}, p.content.Bytes())
		if err != nil {
			return err
		}
		contentRef, err := o.ctx.IndRefForNewObject(*sd)
		if err != nil {
			return err
		}

		res := types.Dict{"ProcSet": types.Array{types.Name("PDF"), types.Name("Text")}}
		if len(p.xobjects) > 0 {
			res["XObject"] = p.xobjects
		}
		if len(p.fonts) > 0 {
			res["Font"] = p.fonts
		}

		pageRef, err := o.ctx.IndRefForNewObject(types.Dict{
			"Type":      types.Name("Page"),
			"Parent":    *pagesRef,
			"MediaBox":  mediaBox,
			"Resources": res,
			"Contents":  *contentRef,
			"Rotate":    types.Integer(0),
		})
		if err != nil {
			return err
		}
		kids = append(kids, *pageRef)
	}

	pagesDict["Kids"] = kids
	pagesDict["Count"] = types.Integer(len(kids))
	for _, key := range []string{"Resources", "MediaBox", "CropBox", "Rotate"} {
		delete(pagesDict, key)
	}
	for _, key := range []string{"Outlines", "PageLabels", "StructTreeRoot", "AcroForm", "OpenAction", "Names", "Dests"} {
		delete(root, key)
	}
	o.ctx.PageCount = len(kids)
	return nil
}

// newStream builds a Flate-compressed stream.
func newStream(d types.Dict, content []byte) (*types.StreamDict, error) {
	d["Filter"] = types.Name(filter.Flate)
	sd := types.StreamDict{
		Dict:           d,
		Content:        content,
		FilterPipeline: []types.PDFFilter{{Name: filter.Flate}},
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	length := int64(len(sd.Raw))
	sd.StreamLength = &length
	sd.Dict["Length"] = types.Integer(length)
	return &sd, nil
}
