// Package request decodes JSON request bodies for the HTTP handlers.
package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/school-records/internal/types"
)

// maxBody caps request bodies; every payload here is a handful of fields.
const maxBody = 1 << 20

// maxWholeNumber is the largest float64 that still holds every integer
// below it exactly.
const maxWholeNumber = 1 << 53

// DecodeJSON reads r's body into v. An empty or malformed body is reported
// as invalid input so the handler can answer 400 through response.Error.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)

	// io.EOF means the body was completely empty, nothing to decode.
	if errors.Is(err, io.EOF) {
		return types.ValidationErrors{{Field: "body", Message: "request body is empty"}}
	}
	if err != nil {
		return types.ValidationErrors{{Field: "body", Message: fmt.Sprintf("malformed JSON: %s", err)}}
	}
	return nil
}

// FormValue accepts a JSON string, number, or null and keeps its text, so
// the same form parsing (and the same messages) serve the browser, which
// may post "age": "20", and API clients, which post "age": 20. Whole
// numbers are written in plain decimal, so 1e2 and 100.0 become "100".
type FormValue string

func (f *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FormValue(s)
	default:
		*f = FormValue(data)
		if n, err := strconv.ParseFloat(string(data), 64); err == nil &&
			n == math.Trunc(n) && math.Abs(n) <= maxWholeNumber {
			*f = FormValue(strconv.FormatInt(int64(n), 10))
		}
	}
	return nil
}
