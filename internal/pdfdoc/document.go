package pdfdoc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/crypto/sha3"
)

// MIMEType is the media type accepted by Read.
const MIMEType = "application/pdf"

// Letter is the page size assumed when a page carries no usable media box.
var Letter = Box{LLX: 0, LLY: 0, URX: 612, URY: 792}

// Box is a page rectangle in PDF user space.
type Box struct {
	LLX float64 `json:"llx"`
	LLY float64 `json:"lly"`
	URX float64 `json:"urx"`
	URY float64 `json:"ury"`
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.URX - b.LLX }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.URY - b.LLY }

// Page describes one page of a document.
type Page struct {
	// Number is 1-based.
	Number int `json:"number"`

	// MediaBox is the page boundary in PDF user space.
	MediaBox Box `json:"media_box"`

	// Rotation is the /Rotate value in degrees.
	Rotation int `json:"rotation"`
}

// Width returns the page width in points.
func (p Page) Width() float64 { return p.MediaBox.Width() }

// Height returns the page height in points.
func (p Page) Height() float64 { return p.MediaBox.Height() }

// Info holds the document information dictionary entries drawtopia reports.
type Info struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Creator  string `json:"creator,omitempty"`
	Producer string `json:"producer,omitempty"`
}

// Document is a parsed, validated PDF.
type Document struct {
	// Name is the file name shown to the user.
	Name string

	// Fingerprint is the hex sha3-256 digest of the original bytes.
	Fingerprint string

	// Version is the PDF header version, e.g. "1.7".
	Version string

	Pages []Page
	Info  Info

	data []byte
	opts options
}

// Option configures Read.
type Option func(*options)

type options struct {
	password string
}

// WithPassword sets the user and owner password for encrypted documents.
func WithPassword(pw string) Option {
	return func(o *options) {
		o.password = pw
	}
}

// pdfcpu's on-disk config directory is never touched.
func init() {
	api.DisableConfigDir()
}

// configuration returns a fresh pdfcpu configuration.
func (o options) configuration() *pdfmodel.Configuration {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	if o.password != "" {
		conf.UserPW = o.password
		conf.OwnerPW = o.password
	}
	return conf
}

// IsPDFMIME reports whether a declared media type is application/pdf.
// Parameters such as "; charset=binary" are ignored.
func IsPDFMIME(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	return strings.EqualFold(mediaType, MIMEType)
}

// DetectMIME sniffs the media type of data.
func DetectMIME(data []byte) string {
	return http.DetectContentType(data)
}

// Fingerprint returns the hex sha3-256 digest of data.
func Fingerprint(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Read parses and validates a PDF held in memory.
func Read(name string, data []byte, opts ...Option) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) && !IsPDFMIME(DetectMIME(data)) {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, name)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	doc := &Document{
		Name:        name,
		Fingerprint: Fingerprint(data),
		data:        data,
		opts:        o,
	}

	ctx, err := doc.context()
	if err != nil {
		return nil, err
	}

	if ctx.PageCount == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, name)
	}

	if ctx.HeaderVersion != nil {
		doc.Version = ctx.HeaderVersion.String()
	}
	doc.Info = Info{
		Title:    ctx.Title,
		Author:   ctx.Author,
		Subject:  ctx.Subject,
		Creator:  ctx.Creator,
		Producer: ctx.Producer,
	}

	doc.Pages = make([]Page, ctx.PageCount)
	for p := 1; p <= ctx.PageCount; p++ {
		_, _, inh, err := ctx.PageDict(p, false)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", p, err)
		}
		page := Page{Number: p, MediaBox: Letter}
		if inh != nil {
			if box := boxFromRect(inh.MediaBox); box.Width() > 0 && box.Height() > 0 {
				page.MediaBox = box
			}
			page.Rotation = inh.Rotate
		}
		doc.Pages[p-1] = page
	}

	return doc, nil
}

// ReadFile reads and parses the PDF at path. The document is named after
// the file's base name.
func ReadFile(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-selected document
	if err != nil {
		return nil, err
	}
	return Read(filepath.Base(path), data, opts...)
}

// context parses the original bytes into a fresh, validated pdfcpu context.
func (d *Document) context() (*pdfmodel.Context, error) {
	ctx, err := api.ReadContext(bytes.NewReader(d.data), d.opts.configuration())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", d.Name, err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", d.Name, err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count pages of %s: %w", d.Name, err)
	}
	return ctx, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns the 1-based page n.
func (d *Document) Page(n int) (Page, error) {
	if n < 1 || n > len(d.Pages) {
		return Page{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(d.Pages))
	}
	return d.Pages[n-1], nil
}

// Size returns the length of the original document in bytes.
func (d *Document) Size() int {
	return len(d.data)
}

// boxFromRect converts a pdfcpu rectangle, tolerating nil.
func boxFromRect(r *types.Rectangle) Box {
	if r == nil {
		return Box{}
	}
	return Box{LLX: r.LL.X, LLY: r.LL.Y, URX: r.UR.X, URY: r.UR.Y}
}
