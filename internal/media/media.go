// Package media talks to the object store that holds recipe images.
//
// Every URL handed out by a Store ends in "/v<version>/<public id>.<format>".
// ExtractIdentifier recovers that triple from a stored URL, and the object key
// is rebuilt from it, so callers never need to know how a backend names things.
package media

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object is a binary upload
type Object struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store uploads images and deletes them by identifier
type Store interface {
	// Upload stores the object and returns its public retrieval URL
	Upload(ctx context.Context, obj Object) (string, error)
	// Delete removes a previously uploaded object
	Delete(ctx context.Context, id Identifier) error
}

// Identifier locates an uploaded object
type Identifier struct {
	Version  string
	PublicID string
	Format   string
}

// Key is the object key the identifier was uploaded under
func (id Identifier) Key() string {
	return fmt.Sprintf("v%s/%s.%s", id.Version, id.PublicID, id.Format)
}

// The leading .* makes the last /v<digits>/ segment win, so a public base URL
// carrying its own version segment does not shift the key.
var identifierPattern = regexp.MustCompile(`^.*/v(\d+)/(.+)\.(\w+)$`)

// ExtractIdentifier parses the version segment, public id and format from an
// image URL. ok is false when the URL does not have that shape.
func ExtractIdentifier(imageURL string) (Identifier, bool) {
	target := imageURL
	if u, err := url.Parse(imageURL); err == nil && u.Path != "" {
		target = u.Path
	}

	m := identifierPattern.FindStringSubmatch(target)
	if m == nil {
		return Identifier{}, false
	}
	return Identifier{Version: m[1], PublicID: m[2], Format: m[3]}, true
}

var formatPattern = regexp.MustCompile(`^\w+$`)

// NewIdentifier names a fresh upload inside folder
func NewIdentifier(folder, filename string, now time.Time) Identifier {
	format := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !formatPattern.MatchString(format) {
		format = "jpg"
	}

	publicID := uuid.NewString()
	if folder = strings.Trim(folder, "/"); folder != "" {
		publicID = folder + "/" + publicID
	}

	return Identifier{
		Version:  fmt.Sprintf("%d", now.Unix()),
		PublicID: publicID,
		Format:   format,
	}
}

// PublicURL joins a public base URL and an object key
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
