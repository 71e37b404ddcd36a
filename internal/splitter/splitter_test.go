package splitter

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		marker string
		want   []string
	}{
		{
			name:   "leading marker",
			text:   "LETTER one\nLETTER two",
			marker: "LETTER",
			want:   []string{"LETTERone\n", "LETTERtwo"},
		},
		{
			name:   "whitespace lead-in dropped",
			text:   "\n  \nPage: a\nPage:   b",
			marker: "Page:",
			want:   []string{"Page:a\n", "Page:b"},
		},
		{
			name:   "text lead-in kept",
			text:   "Cover notes\n## first\n## second",
			marker: "##",
			want:   []string{"##Cover notes\n", "##first\n", "##second"},
		},
		{
			name:   "adjacent markers",
			text:   "XXX",
			marker: "X",
			want:   []string{"X", "X", "X"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ByMarker(tt.text, tt.marker)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestByMarker_Errors(t *testing.T) {
	t.Parallel()

	_, err := ByMarker("text", "")
	assert.ErrorIs(t, err, ErrEmptyMarker)

	_, err = ByMarker("no markers here", "@@")
	assert.ErrorIs(t, err, ErrNoParts)

	_, err = ByMarker("text", " \t\n")
	assert.ErrorIs(t, err, ErrEmptyMarker)
}

func TestByMarker_TrimsMarker(t *testing.T) {
	t.Parallel()

	chunks, err := ByMarker("intro ---one ---two", " ---\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"---intro ", "---one ", "---two"}, chunks)
}

func TestNameChunks(t *testing.T) {
	t.Parallel()

	parts := NameChunks("diary", []string{"a", "b"}, 4)
	assert.Equal(t, []Part{
		{Name: "diary_0001.txt", Text: "a"},
		{Name: "diary_0002.txt", Text: "b"},
	}, parts)

	assert.Equal(t, "x_1.txt", NameChunks("x", []string{"a"}, 0)[0].Name)
}

func TestByImage(t *testing.T) {
	t.Parallel()

	text := "Image 1\nTranscription: Dear Sir,\nI write to you.\n\n" +
		"image 2 Transcription:\nSecond page\n" +
		"IMAGE  10\n\nTenth\n"

	parts, err := ByImage(text)
	require.NoError(t, err)
	assert.Equal(t, []Part{
		{Name: "image_1.txt", Text: "Dear Sir,\nI write to you."},
		{Name: "image_2.txt", Text: "Second page"},
		{Name: "image_10.txt", Text: "Tenth"},
	}, parts)
}

func TestByImage_IgnoresPreambleAndNonHeadings(t *testing.T) {
	t.Parallel()

	text := "Batch 4 notes\nImage 3\nSee Images 7 and 8.\n"
	parts, err := ByImage(text)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "image_3.txt", parts[0].Name)
	assert.Equal(t, "See Images 7 and 8.", parts[0].Text)
}

func TestByImage_RepeatedNumbers(t *testing.T) {
	t.Parallel()

	parts, err := ByImage("Image 1 a Image 1 b Image 1 c")
	require.NoError(t, err)
	names := []string{parts[0].Name, parts[1].Name, parts[2].Name}
	assert.Equal(t, []string{"image_1.txt", "image_1_2.txt", "image_1_3.txt"}, names)
	assert.Equal(t, "a ", parts[0].Text)
}

func TestByImage_NoHeadings(t *testing.T) {
	t.Parallel()

	_, err := ByImage("just some text")
	assert.ErrorIs(t, err, ErrNoParts)
}

func TestBaseName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "letters", BaseName("/tmp/in/letters.txt"))
	assert.Equal(t, "archive.tar", BaseName("archive.tar.gz"))
	assert.Equal(t, "README", BaseName("README"))
	assert.Equal(t, ".profile", BaseName(".profile"))
}

func TestWriteArchive(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	parts := NameChunks("notes", []string{"one", "two"}, 4)
	require.NoError(t, WriteArchive(&buf, parts))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "notes_0001.txt", zr.File[0].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "two", string(body))
}

func TestWriteArchive_DuplicateNames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := WriteArchive(&buf, []Part{{Name: "a.txt"}, {Name: "a.txt"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "splitter: write archive")
}
