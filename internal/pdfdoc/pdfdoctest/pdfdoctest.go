// Package pdfdoctest builds small, valid PDF documents for tests.
package pdfdoctest

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Options describes the document New builds.
type Options struct {
	// Pages is the number of pages. Zero means one page.
	Pages int

	// Width and Height are the media box size in points. Zero means US Letter.
	Width  float64
	Height float64

	// OriginX and OriginY move the lower-left corner of the media box.
	OriginX float64
	OriginY float64

	// InheritMediaBox puts the media box on the page tree node only, so
	// pages inherit it.
	InheritMediaBox bool

	// Rotate is written as /Rotate on every page when non-zero.
	Rotate int

	// Annots places that many Text annotations on every page, held in an
	// indirect /Annots array.
	Annots int

	// Title is written to the information dictionary when set.
	Title string

	// UserPassword encrypts the document when set. OwnerPassword defaults
	// to "owner".
	UserPassword  string
	OwnerPassword string
}

func init() {
	api.DisableConfigDir()
}

// New returns the bytes of a PDF with blank pages. It panics if pdfcpu
// cannot build the document.
func New(opts Options) []byte {
	data, err := build(opts)
	if err != nil {
		panic(fmt.Sprintf("pdfdoctest: %v", err))
	}
	return data
}

func build(opts Options) ([]byte, error) {
	if opts.Pages <= 0 {
		opts.Pages = 1
	}
	if opts.Width <= 0 {
		opts.Width = 612
	}
	if opts.Height <= 0 {
		opts.Height = 792
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := pdfcpu.CreateContextWithXRefTable(conf, &types.Dim{Width: opts.Width, Height: opts.Height})
	if err != nil {
		return nil, err
	}

	root, err := ctx.Catalog()
	if err != nil {
		return nil, err
	}
	pagesRef := root.IndirectRefEntry("Pages")
	if pagesRef == nil {
		return nil, errors.New("catalog has no page tree")
	}
	pages, err := ctx.DereferenceDict(*pagesRef)
	if err != nil {
		return nil, err
	}

	mediaBox := types.NewNumberArray(opts.OriginX, opts.OriginY, opts.OriginX+opts.Width, opts.OriginY+opts.Height)
	if opts.InheritMediaBox {
		pages.Update("MediaBox", mediaBox)
	} else {
		pages.Delete("MediaBox")
	}

	kids := types.Array{}
	for range opts.Pages {
		page := types.Dict(map[string]types.Object{
			"Type":      types.Name("Page"),
			"Parent":    *pagesRef,
			"Resources": types.Dict{},
		})
		if !opts.InheritMediaBox {
			page.Insert("MediaBox", mediaBox)
		}
		if opts.Rotate != 0 {
			page.Insert("Rotate", types.Integer(opts.Rotate))
		}
		if opts.Annots > 0 {
			annots, err := textAnnots(ctx, opts.Annots)
			if err != nil {
				return nil, err
			}
			page.Insert("Annots", *annots)
		}

		ref, err := ctx.IndRefForNewObject(page)
		if err != nil {
			return nil, err
		}
		kids = append(kids, *ref)
	}
	pages.Update("Kids", kids)
	pages.Update("Count", types.Integer(opts.Pages))

	info := types.Dict(map[string]types.Object{
		"Producer": types.StringLiteral("pdfdoctest"),
	})
	if opts.Title != "" {
		info.Insert("Title", types.StringLiteral(opts.Title))
		ctx.Title = opts.Title
	}
	if ctx.Info, err = ctx.IndRefForNewObject(info); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, err
	}
	if opts.UserPassword == "" {
		return buf.Bytes(), nil
	}
	return encrypt(buf.Bytes(), opts.UserPassword, opts.OwnerPassword)
}

// textAnnots creates n Text annotations and an indirect array holding them.
func textAnnots(ctx *model.Context, n int) (*types.IndirectRef, error) {
	arr := types.Array{}
	for i := range n {
		d := types.Dict(map[string]types.Object{
			"Type":     types.Name("Annot"),
			"Subtype":  types.Name("Text"),
			"Rect":     types.NewNumberArray(10, 10, 30, 30),
			"Contents": types.StringLiteral(fmt.Sprintf("existing %d", i+1)),
		})
		ref, err := ctx.IndRefForNewObject(d)
		if err != nil {
			return nil, err
		}
		arr = append(arr, *ref)
	}
	return ctx.IndRefForNewObject(arr)
}

func encrypt(data []byte, userPW, ownerPW string) ([]byte, error) {
	if ownerPW == "" {
		ownerPW = "owner"
	}
	conf := model.NewDefaultConfiguration()
	conf.UserPW = userPW
	conf.OwnerPW = ownerPW

	var out bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
