package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pageContent returns a page's decoded content, joining content arrays.
func pageContent(ctx *model.Context, d types.Dict) ([]byte, error) {
	o, found := d.Find("Contents")
	if !found || o == nil {
		return nil, nil
	}
	o, err := ctx.Dereference(o)
	if err != nil {
		return nil, err
	}

	switch v := o.(type) {
	case types.StreamDict:
		return decodeStream(v)
	case types.Array:
		var buf bytes.Buffer
		for i, el := range v {
			obj, err := ctx.Dereference(el)
			if err != nil {
				return nil, err
			}
			sd, ok := obj.(types.StreamDict)
			if !ok {
				return nil, fmt.Errorf("content array entry %d is %T", i, obj)
			}
			b, err := decodeStream(sd)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected page contents %T", o)
	}
}

func decodeStream(sd types.StreamDict) ([]byte, error) {
	if err := sd.Decode(); err != nil {
		return nil, err
	}
	return sd.Content, nil
}

// pageResources returns the page's own resources or the inherited ones.
func pageResources(ctx *model.Context, d types.Dict, inh *model.InheritedPageAttrs) (types.Dict, error) {
	if o, found := d.Find("Resources"); found && o != nil {
		res, err := ctx.DereferenceDict(o)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	if inh != nil && inh.Resources != nil {
		return inh.Resources, nil
	}
	return types.Dict{}, nil
}

// pageBox returns the visible box of a page as a PDF array: CropBox, then
// MediaBox, each from the page or inherited, then the page dimensions.
func pageBox(ctx *model.Context, d types.Dict, inh *model.InheritedPageAttrs, dim types.Dim) (types.Array, error) {
	for _, key := range []string{"CropBox", "MediaBox"} {
		o, found := d.Find(key)
		if !found || o == nil {
			continue
		}
		arr, err := ctx.DereferenceArray(o)
		if err != nil {
			return nil, err
		}
		box, err := numbers(ctx, arr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if len(box) == 4 {
			return rectArray(box[0], box[1], box[2], box[3]), nil
		}
	}
	if inh != nil {
		for _, r := range []*types.Rectangle{inh.CropBox, inh.MediaBox} {
			if r != nil {
				return rectArray(r.LL.X, r.LL.Y, r.UR.X, r.UR.Y), nil
			}
		}
	}
	return rectArray(0, 0, dim.Width, dim.Height), nil
}

func numbers(ctx *model.Context, arr types.Array) ([]float64, error) {
	out := make([]float64, 0, len(arr))
	for _, el := range arr {
		o, err := ctx.Dereference(el)
		if err != nil {
			return nil, err
		}
		switch v := o.(type) {
		case types.Integer:
			out = append(out, float64(v))
		case types.Float:
			out = append(out, float64(v))
		default:
			return nil, fmt.Errorf("non-numeric entry %T", o)
		}
	}
	return out, nil
}

func rectArray(llx, lly, urx, ury float64) types.Array {
	return types.Array{types.Float(llx), types.Float(lly), types.Float(urx), types.Float(ury)}
}
