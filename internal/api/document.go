package api

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Document is the format-agnostic response tree: nested maps, slices and
// scalars built per request and encoded to JSON or XML right before the
// response is written.
type Document = map[string]any

// Render writes a document in the negotiated format.
func Render(c *gin.Context, status int, format Format, doc Document) {
	switch format {
	case FormatXML:
		c.Header("Content-Type", FormatXML.ContentType())
		c.Status(status)
		if err := writeXML(c.Writer, doc); err != nil {
			_ = c.Error(err)
		}
	default:
		c.Header("Content-Type", FormatJSON.ContentType())
		c.Status(status)
		enc := json.NewEncoder(c.Writer)
		if err := enc.Encode(doc); err != nil {
			_ = c.Error(err)
		}
	}
}

// RenderError writes an API error in the negotiated format. When negotiation
// itself failed the error document falls back to JSON.
func RenderError(c *gin.Context, format Format, apiErr *Error) {
	if format == "" {
		format = FormatJSON
	}
	Render(c, apiErr.Status, format, apiErr.Document())
}

// writeXML encodes a document as flat typed XML:
//
//	<response>
//	  <value type="string" name="__str__">v1</value>
//	  <object name="meta"><value type="integer" name="total">100</value></object>
//	  <list name="objects"><object>...</object></list>
//	</response>
func writeXML(w io.Writer, doc Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<response>"); err != nil {
		return err
	}
	if err := xmlMap(w, doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</response>")
	return err
}

func xmlMap(w io.Writer, m map[string]any) error {
	// Deterministic output: keys in sorted order.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := xmlNode(w, k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func xmlNode(w io.Writer, name string, v any) error {
	attr := ""
	if name != "" {
		attr = fmt.Sprintf(" name=%q", name)
	}

	switch val := v.(type) {
	case map[string]any:
		if _, err := fmt.Fprintf(w, "<object%s>", attr); err != nil {
			return err
		}
		if err := xmlMap(w, val); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</object>")
		return err

	case []any:
		if _, err := fmt.Fprintf(w, "<list%s>", attr); err != nil {
			return err
		}
		for _, item := range val {
			if err := xmlNode(w, "", item); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</list>")
		return err

	case []Document:
		items := make([]any, len(val))
		for i := range val {
			items[i] = val[i]
		}
		return xmlNode(w, name, items)

	case nil:
		_, err := fmt.Fprintf(w, "<value type=\"null\"%s/>", attr)
		return err

	default:
		typ, text := xmlScalar(v)
		_, err := fmt.Fprintf(w, "<value type=%q%s>%s</value>", typ, attr, text)
		return err
	}
}

func xmlScalar(v any) (typ, text string) {
	switch val := v.(type) {
	case string:
		return "string", xmlEscape(val)
	case bool:
		return "boolean", fmt.Sprintf("%t", val)
	case int, int32, int64:
		return "integer", fmt.Sprintf("%d", val)
	case float32, float64:
		return "float", fmt.Sprintf("%v", val)
	case time.Time:
		return "datetime", val.Format(time.RFC3339)
	default:
		return "string", xmlEscape(fmt.Sprintf("%v", val))
	}
}

func xmlEscape(s string) string {
	var buf []byte
	if err := xml.EscapeText(writerFunc(func(p []byte) (int, error) {
		buf = append(buf, p...)
		return len(p), nil
	}), []byte(s)); err != nil {
		return s
	}
	return string(buf)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
