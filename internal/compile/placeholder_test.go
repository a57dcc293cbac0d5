package compile

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholderPDF_IsParseableSinglePage(t *testing.T) {
	data := PlaceholderPDF()

	assert.Equal(t, []byte("%PDF"), data[:4])
	pages, err := PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestPlaceholderPDF_ReturnsCopy(t *testing.T) {
	a := PlaceholderPDF()
	a[0] = 'X'
	assert.True(t, IsPlaceholder(PlaceholderPDF()))
	assert.False(t, IsPlaceholder(a))
}

func TestPlaceholderPDF_XrefOffsetsPointAtObjects(t *testing.T) {
	data := PlaceholderPDF()
	xref := bytes.Index(data, []byte("xref\n"))
	require.Positive(t, xref)

	lines := strings.Split(string(data[xref:]), "\n")
	// lines[0] "xref", lines[1] "0 6", lines[2] free entry, then one per object
	for i := 1; i <= 5; i++ {
		entry := lines[2+i]
		require.Len(t, entry, 19, "xref entries are 20 bytes including the newline")
		offset, err := strconv.Atoi(entry[:10])
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data[offset:], []byte(fmt.Sprintf("%d 0 obj", i))), "object %d", i)
	}
}

func TestPageCount_RejectsGarbage(t *testing.T) {
	_, err := PageCount([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestLogObserver_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	obs := LogObserver(logger)

	obs(Event{Kind: EventServiceSucceeded, Layout: "modern", Service: "a"})
	obs(Event{Kind: EventServiceFailed, Layout: "modern", Service: "a", Err: ErrHTMLResponse})
	obs(Event{Kind: EventDegradedToPlaceholder, Layout: "modern"})

	out := buf.String()
	assert.NotContains(t, out, "compilation succeeded")
	assert.Contains(t, out, "level=WARN msg=\"service unavailable\"")
	assert.Contains(t, out, "level=ERROR msg=\"degraded to placeholder document\"")
	assert.Contains(t, out, "layout=modern")
}
