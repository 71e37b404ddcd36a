package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunXHTML(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "book.xhtml", `<html><body>
<div id="page-1" ia_leaf_number="1"><h3>Page 1</h3><div class="page-content">First</div></div>
<div id="page-2" ia_leaf_number="2"><div class="page-content">Second</div></div>
</body></html>`)
	out := filepath.Join(dir, "book.csv")

	n, err := runXHTML(in, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Text\n\"Page 1\nFirst\"\nSecond\n", string(got))
}

func TestRunXHTML_MissingInput(t *testing.T) {
	_, err := runXHTML(filepath.Join(t.TempDir(), "missing.xhtml"), "out.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xhtml: open input")
}
