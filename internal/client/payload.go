package client

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Field is one text part of a multipart submission
type Field struct {
	Name  string
	Value string
}

// Image is the file part of a submission
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Payload is a multipart recipe submission. Fields keep their order.
type Payload struct {
	Fields []Field
	Image  *Image
}

// Add appends a text field
func (p *Payload) Add(name, value string) {
	p.Fields = append(p.Fields, Field{Name: name, Value: value})
}

// Get returns the first value of a field
func (p Payload) Get(name string) (string, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Encode renders the payload as multipart/form-data
func (p Payload) Encode() (*bytes.Buffer, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	for _, f := range p.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write %s field: %w", f.Name, err)
		}
	}

	if p.Image != nil {
		contentType := p.Image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(p.Image.Filename)))
		h.Set("Content-Type", contentType)

		fw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := fw.Write(p.Image.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image data: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &b, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
