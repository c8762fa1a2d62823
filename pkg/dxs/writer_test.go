package dxs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementWriter_Nesting(t *testing.T) {
	var buf bytes.Buffer
	ew := NewElementWriter(&buf)

	ew.Open("a", A("k", "v"))
	ew.Open("b")
	ew.Empty("c", A("x", "1"), A("y", "2"))
	ew.Close()
	ew.Close()

	require.NoError(t, ew.Finish())
	assert.Equal(t, 0, ew.Depth())
	assert.Equal(t,
		"<a k=\"v\">\n"+
			"    <b>\n"+
			"        <c x=\"1\" y=\"2\" />\n"+
			"    </b>\n"+
			"</a>\n",
		buf.String())
	assert.Equal(t, int64(buf.Len()), ew.Written())
}

func TestElementWriter_EscapesAttributes(t *testing.T) {
	var buf bytes.Buffer
	ew := NewElementWriter(&buf)

	ew.Empty("primitive", A("name", `a<b & "c"`))
	require.NoError(t, ew.Finish())

	assert.Equal(t, "<primitive name=\"a&lt;b &amp; &#34;c&#34;\" />\n", buf.String())
}

func TestElementWriter_Unbalanced(t *testing.T) {
	t.Run("close without open", func(t *testing.T) {
		ew := NewElementWriter(&bytes.Buffer{})
		ew.Close()
		assert.ErrorIs(t, ew.Finish(), ErrUnbalanced)
	})

	t.Run("left open", func(t *testing.T) {
		ew := NewElementWriter(&bytes.Buffer{})
		ew.Open("scene")
		ew.Open("materials")
		ew.Close()
		err := ew.Finish()
		assert.ErrorIs(t, err, ErrUnbalanced)
		assert.Contains(t, err.Error(), "<scene>")
	})
}

// failingWriter accepts limit bytes, then fails every write.
type failingWriter struct {
	limit int
	n     int
	calls int
}

var errDiskFull = errors.New("disk full")

func (f *failingWriter) Write(p []byte) (int, error) {
	f.calls++
	if f.n+len(p) > f.limit {
		k := f.limit - f.n
		f.n = f.limit
		return k, errDiskFull
	}
	f.n += len(p)
	return len(p), nil
}

func TestElementWriter_StickyError(t *testing.T) {
	fw := &failingWriter{limit: 10}
	ew := NewElementWriter(fw)

	ew.Open("scene", A("version", Version)) // longer than 10 bytes
	calls := fw.calls
	ew.Open("materials")
	ew.Empty("vertex")
	ew.Close()

	err := ew.Finish()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSinkWrite)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, calls, fw.calls, "no writes after the first failure")
	assert.Equal(t, int64(10), ew.Written())
}
