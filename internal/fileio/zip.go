package fileio

import (
	"archive/zip"
	"io"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

// ZIPEntry is one file to place in an archive.
type ZIPEntry struct {
	Name    string
	Content []byte
}

// WriteZIP writes entries to w as a ZIP archive, in order. Entry names must
// be relative, slash-separated paths without ".." segments.
func WriteZIP(w io.Writer, entries []ZIPEntry) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		name, err := cleanEntryName(e.Name)
		if err != nil {
			_ = zw.Close()
			return err
		}
		if seen[name] {
			_ = zw.Close()
			return eris.Errorf("zip: duplicate entry %q", name)
		}
		seen[name] = true

		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			_ = zw.Close()
			return eris.Wrap(err, "zip: create entry")
		}
		if _, err := fw.Write(e.Content); err != nil {
			_ = zw.Close()
			return eris.Wrap(err, "zip: write entry")
		}
	}

	if err := zw.Close(); err != nil {
		return eris.Wrap(err, "zip: finalize archive")
	}
	return nil
}

// cleanEntryName rejects names that would escape the extraction directory
// (zip slip) and normalizes the rest.
func cleanEntryName(name string) (string, error) {
	if name == "" {
		return "", eris.New("zip: empty entry name")
	}
	slashed := strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(slashed, "/") {
		return "", eris.Errorf("zip: illegal path %q (absolute)", name)
	}
	cleaned := path.Clean(slashed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", eris.Errorf("zip: illegal path %q (zip slip attempt)", name)
	}
	return cleaned, nil
}
