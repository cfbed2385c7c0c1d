package common

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v2"

	"boscoin.io/sctester/lib/errors"
)

type Encode func(v interface{}, w io.Writer) error

var DefaultEncodes = map[string]Encode{
	"json": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, false)
	},
	"prettyjson": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, true)
	},
	"yaml": func(v interface{}, w io.Writer) error {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	},
}

func GetEncode(format string) (Encode, error) {
	encode, found := DefaultEncodes[format]
	if !found {
		return nil, errors.InvalidInvocation.Clone().SetData("format", format)
	}

	return encode, nil
}

func jsonEncode(v interface{}, w io.Writer, pretty bool) error {
	e := json.NewEncoder(w)
	if pretty {
		e.SetIndent("", "  ")
	}

	return e.Encode(&v)
}
