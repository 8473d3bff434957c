package api

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Format is a supported response serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// ContentType returns the response content type for the format.
func (f Format) ContentType() string {
	if f == FormatXML {
		return "application/xml; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// SelectFormat picks the response format for a request. A ?format= query
// parameter wins; otherwise the Accept header is parsed with q-values.
// Wildcard ranges select JSON. No acceptable format means 406.
func SelectFormat(r *http.Request) (Format, *Error) {
	switch r.URL.Query().Get("format") {
	case "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "":
	default:
		return "", NotAcceptable()
	}

	accept := r.Header.Get("Accept")
	if accept == "" {
		return "", NotAcceptable()
	}

	type candidate struct {
		format Format
		q      float64
		order  int
	}
	var candidates []candidate

	for i, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if qs, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(qs, 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}

		var f Format
		switch mediaType {
		case "application/json", "text/json":
			f = FormatJSON
		case "application/xml", "text/xml":
			f = FormatXML
		case "*/*", "application/*":
			f = FormatJSON
		default:
			continue
		}
		candidates = append(candidates, candidate{format: f, q: q, order: i})
	}

	if len(candidates) == 0 {
		return "", NotAcceptable()
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].q != candidates[j].q {
			return candidates[i].q > candidates[j].q
		}
		return candidates[i].order < candidates[j].order
	})
	return candidates[0].format, nil
}

// DecodeBody reads a request body declared as JSON, form-encoded or multipart
// into a field name to value mapping. Any other content type is rejected with
// 415. Bodies are decoded once; repeated field values keep the first.
func DecodeBody(r *http.Request) (map[string]any, *Error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, UnsupportedMediaType()
	}

	switch mediaType {
	case "application/json":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, NewError(http.StatusBadRequest, "Malformed request body")
		}
		values := map[string]any{}
		if len(body) == 0 {
			return values, nil
		}
		if err := json.Unmarshal(body, &values); err != nil {
			return nil, NewError(http.StatusBadRequest, "Malformed JSON body")
		}
		return values, nil

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, NewError(http.StatusBadRequest, "Malformed form body")
		}
		values := map[string]any{}
		for key, vals := range r.PostForm {
			if len(vals) > 0 {
				values[key] = vals[0]
			}
		}
		return values, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, NewError(http.StatusBadRequest, "Malformed multipart body")
		}
		values := map[string]any{}
		for key, vals := range r.MultipartForm.Value {
			if len(vals) > 0 {
				values[key] = vals[0]
			}
		}
		return values, nil
	}

	return nil, UnsupportedMediaType()
}
