package xhtml

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bookXHTML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<body>
  <div id="page-1" ia_leaf_number="1">
    <h3>  Page 1 </h3>
    <div class="page-content">
      <p>Dear <em>Sir</em>,</p>
    </div>
  </div>
  <div id="page-2" ia_leaf_number="2">
    <div class="page-content">No heading here</div>
  </div>
  <div id="page-3">
    <h3>Missing leaf number</h3>
  </div>
  <div id="cover" ia_leaf_number="0">
    <h3>Wrong id prefix</h3>
  </div>
  <div id="page-4" ia_leaf_number="4">
    <h3>Heading only</h3>
  </div>
</body>
</html>`

func TestExtractPages(t *testing.T) {
	pages, err := ExtractPages(strings.NewReader(bookXHTML))
	require.NoError(t, err)

	require.Len(t, pages, 3)
	assert.Equal(t, "Page 1\nDear Sir,", pages[0].Text)
	assert.Equal(t, "No heading here", pages[1].Text)
	assert.Equal(t, "Heading only", pages[2].Text)
}

func TestExtractPages_NoPages(t *testing.T) {
	pages, err := ExtractPages(strings.NewReader("<html><body><p>hi</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestTextContent_Nil(t *testing.T) {
	assert.Equal(t, "", TextContent(nil))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Page{{Text: "Page 1\nDear \"Sir\""}, {Text: "plain"}})
	require.NoError(t, err)
	assert.Equal(t, "Text\n\"Page 1\nDear \"\"Sir\"\"\"\nplain\n", buf.String())
}
