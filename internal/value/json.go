package value

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/chemiclast/rasorite/internal/errors"
	"github.com/shopspring/decimal"
)

// MarshalJSON encodes v as a JSON number. Fixed values are written with
// enough digits to decode back to the same raw value.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindFixed {
		s := decimal.NewFromInt(v.raw()).Div(fixedScale).String()
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return []byte(s), nil
	}
	return []byte(v.String()), nil
}

// UnmarshalJSON accepts a JSON number, a JSON string holding a number, or
// the tagged object forms {"Integer": n}, {"Float": x} and {"Zero": null}.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New().WithData(ErrCannotParse, string(data))
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return cannotParse(string(data), err)
		}
		parsed, err := Parse(text)
		if err != nil {
			return err
		}
		*v = parsed
		return nil

	case '{':
		return v.unmarshalTagged(data)
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v *Value) unmarshalTagged(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return cannotParse(string(data), err)
	}
	if len(tagged) != 1 {
		return errors.New().WithData(ErrCannotParse, string(data)).
			WithMessage("tagged value must have exactly one variant")
	}

	for tag, payload := range tagged {
		text := string(bytes.TrimSpace(payload))
		switch tag {
		case "Zero":
			*v = Zero()
			return nil
		case "Integer":
			n, err := strconv.ParseUint(text, 10, 64)
			if err != nil {
				return cannotParse(text, err)
			}
			*v = Integer(n)
			return nil
		case "Float", "Fixed":
			parsed, err := parseFixed(text)
			if err != nil {
				return err
			}
			*v = parsed
			return nil
		}
	}

	return errors.New().WithData(ErrCannotParse, string(data)).
		WithMessage("unknown value variant")
}
