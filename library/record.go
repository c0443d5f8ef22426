// Package library turns a folder of image files into an ordered, immutable
// list of records with the metadata encoded in their file names.
//
// A file named "Sunset.Jane%20Doe.png" becomes the record
// {Name: "Sunset", Author: "Jane Doe"}; "Sunset.png" has no author.
package library

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"time"
)

// Record describes one image.
type Record struct {
	Src     string    // URL the image is served from, never empty
	File    string    // base file name inside the library directory
	Name    string    // decoded first file name segment
	Author  string    // decoded second segment, "" when absent
	Width   int       // natural width, 0 when unknown
	Height  int       // natural height, 0 when unknown
	Size    int64     // file size in bytes
	ModTime time.Time // file modification time
}

// ParseFileName splits a file name into its name and optional author.
// Segments that fail to URL-decode are kept as they are.
func ParseFileName(file string) (name, author string) {
	base := strings.TrimSuffix(file, path.Ext(file))
	parts := strings.Split(base, ".")
	name = decodeSegment(parts[0])
	if len(parts) > 1 {
		author = decodeSegment(parts[1])
	}
	return name, author
}

// EncodeFileName is the inverse of ParseFileName. ext includes the dot.
func EncodeFileName(name, author, ext string) string {
	s := encodeSegment(name)
	if author != "" {
		s += "." + encodeSegment(author)
	}
	return s + strings.ToLower(ext)
}

func decodeSegment(s string) string {
	d, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return d
}

// encodeSegment escapes dots too, since they separate segments.
func encodeSegment(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), ".", "%2E")
}

// NewRecord builds the record for file served under urlPrefix.
func NewRecord(urlPrefix, file string) Record {
	name, author := ParseFileName(file)
	return Record{
		Src:    strings.TrimRight(urlPrefix, "/") + "/" + url.PathEscape(file),
		File:   file,
		Name:   name,
		Author: author,
	}
}

// Field exposes record values to the query filter.
func (r Record) Field(name string) string {
	switch name {
	case "name":
		return r.Name
	case "author":
		return r.Author
	case "file":
		return r.File
	case "ext":
		return strings.TrimPrefix(path.Ext(r.File), ".")
	case "src":
		return r.Src
	}
	return ""
}

// HasSize reports whether the natural size is known.
func (r Record) HasSize() bool {
	return r.Width > 0 && r.Height > 0
}

// Caption is "Name" or "Name, Author".
func (r Record) Caption() string {
	if r.Author == "" {
		return r.Name
	}
	return r.Name + ", " + r.Author
}

// MarshalJSON writes an absent author as null.
func (r Record) MarshalJSON() ([]byte, error) {
	var author *string
	if r.Author != "" {
		author = &r.Author
	}
	return json.Marshal(struct {
		Src     string    `json:"src"`
		File    string    `json:"file"`
		Name    string    `json:"name"`
		Author  *string   `json:"author"`
		Width   int       `json:"width,omitempty"`
		Height  int       `json:"height,omitempty"`
		ModTime time.Time `json:"modTime"`
	}{r.Src, r.File, r.Name, author, r.Width, r.Height, r.ModTime})
}
