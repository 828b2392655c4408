// SPDX-License-Identifier: MPL-2.0

// Package manifest reads, writes and certifies Revit .addin manifest files.
package manifest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="utf-8"?>` + "\n"
	addInType = "Application"
)

var (
	// ErrManifestNotFound is returned when a manifest file does not exist.
	ErrManifestNotFound = errors.New("manifest file not found")

	// placeholderMarkers are case-sensitive substrings left in manifests
	// copied from the project template.
	placeholderMarkers = []string{
		"Template Plugin",
		"youremail@example.com",
		"Insert description here",
	}
)

type (
	// Info holds the fields of one add-in entry.
	Info struct {
		Name              string `xml:"Name"`
		Assembly          string `xml:"Assembly"`
		AddInID           string `xml:"AddInId"`
		FullClassName     string `xml:"FullClassName"`
		VendorID          string `xml:"VendorId"`
		VendorDescription string `xml:"VendorDescription"`
		VendorEmail       string `xml:"VendorEmail"`
	}

	// document is the on-disk shape. Field order is the element order.
	document struct {
		XMLName xml.Name `xml:"RevitAddIns"`
		AddIn   addIn    `xml:"AddIn"`
	}

	addIn struct {
		Type string `xml:"Type,attr"`
		Info
	}
)

// PlaceholderMarkers returns the substrings that mark an uncustomized manifest.
func PlaceholderMarkers() []string {
	out := make([]string, len(placeholderMarkers))
	copy(out, placeholderMarkers)
	return out
}

// HasPlaceholder reports whether contents hold any placeholder marker.
func HasPlaceholder(contents []byte) bool {
	for _, m := range placeholderMarkers {
		if bytes.Contains(contents, []byte(m)) {
			return true
		}
	}
	return false
}

// NeedsRegeneration reports whether the manifest at path is missing or still
// holds template placeholders. Any other content, even malformed, is kept.
func NeedsRegeneration(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}
		return false, fmt.Errorf("read manifest: %w", err)
	}
	return HasPlaceholder(data), nil
}

// Parse reads the manifest at path.
func Parse(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return Info{}, fmt.Errorf("read manifest: %w", err)
	}
	return Decode(data)
}

// Decode parses manifest contents.
func Decode(data []byte) (Info, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Info{}, fmt.Errorf("parse manifest: %w", err)
	}
	return doc.AddIn.Info, nil
}

// Encode renders info as a tab-indented manifest with a UTF-8 declaration.
// Values are XML-escaped.
func Encode(info Info) ([]byte, error) {
	doc := document{AddIn: addIn{Type: addInType, Info: info}}
	body, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(xmlHeader) + len(body) + 1)
	buf.WriteString(xmlHeader)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Write encodes info to path, replacing any existing file.
func Write(path string, info Info) error {
	data, err := Encode(info)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// String renders the info as aligned "Field: value" lines.
func (i Info) String() string {
	var sb strings.Builder
	for _, f := range i.Fields() {
		fmt.Fprintf(&sb, "%-18s %s\n", f[0]+":", f[1])
	}
	return sb.String()
}

// Fields returns element name and value pairs in manifest order.
func (i Info) Fields() [][2]string {
	return [][2]string{
		{"Name", i.Name},
		{"Assembly", i.Assembly},
		{"AddInId", i.AddInID},
		{"FullClassName", i.FullClassName},
		{"VendorId", i.VendorID},
		{"VendorDescription", i.VendorDescription},
		{"VendorEmail", i.VendorEmail},
	}
}
