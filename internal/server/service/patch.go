package service

import (
	"github.com/mdouchement/corkboard/internal/cberror"
	"github.com/mdouchement/corkboard/internal/model"
	"github.com/valyala/fastjson"
)

var readonly = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"created_by": true,
	"updated_by": true,
}

// ParsePatch parses a partial update of an item of type t.
// Absent fields are left untouched while present fields, even zero ones, are applied.
func ParsePatch(body []byte, t model.ItemType) (model.Patch, error) {
	var patch model.Patch

	var p fastjson.Parser
	v, err := p.ParseBytes(body)
	if err != nil {
		return patch, cberror.BadRequest("Malformed request body")
	}
	o, err := v.Object()
	if err != nil {
		return patch, cberror.BadRequest("Request body must be an object")
	}

	var unknown string
	o.Visit(func(key []byte, _ *fastjson.Value) {
		switch k := string(key); k {
		case "type", "x", "y", "rotation", "z_index", "color", "content":
		default:
			if !readonly[k] && unknown == "" {
				unknown = k
			}
		}
	})
	if unknown != "" {
		return patch, cberror.BadRequest("Unknown field %q", unknown)
	}

	if f := o.Get("type"); f != nil {
		s, err := f.StringBytes()
		if err != nil || model.ItemType(s) != t {
			return patch, cberror.BadRequest("The type of an item can't be changed")
		}
	}

	floats := []struct {
		key string
		dst **float64
	}{
		{key: "x", dst: &patch.X},
		{key: "y", dst: &patch.Y},
		{key: "rotation", dst: &patch.Rotation},
	}
	for _, field := range floats {
		f := o.Get(field.key)
		if f == nil {
			continue
		}
		n, err := f.Float64()
		if err != nil {
			return patch, cberror.BadRequest("%s must be a number", field.key)
		}
		*field.dst = model.Float(n)
	}

	if f := o.Get("z_index"); f != nil {
		n, err := f.Int()
		if err != nil {
			return patch, cberror.BadRequest("z_index must be an integer")
		}
		patch.ZIndex = model.Int(n)
	}

	if f := o.Get("color"); f != nil {
		s, err := f.StringBytes()
		if err != nil {
			return patch, cberror.BadRequest("color must be a string")
		}
		patch.Color = model.String(string(s))
	}

	if f := o.Get("content"); f != nil {
		if f.Type() != fastjson.TypeObject {
			return patch, cberror.BadRequest("content must be an object")
		}
		patch.Content = f.MarshalTo(nil)
	}

	return patch, nil
}
