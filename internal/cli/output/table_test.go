package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairs(t *testing.T) {
	pairs := Pairs{
		{[]byte("alpha"), []byte("1")},
		{[]byte{0x00, 0x01}, []byte("bin")},
	}

	assert.Equal(t, []string{"KEY", "VALUE"}, pairs.Headers())

	rows := pairs.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alpha", "1"}, rows[0])
	assert.Equal(t, []string{`\x00\x01`, "bin"}, rows[1])
}

func TestPrintTable(t *testing.T) {
	pairs := Pairs{
		{[]byte("key1"), []byte("value1")},
		{[]byte("key2"), []byte("value2")},
	}

	var buf bytes.Buffer
	err := PrintTable(&buf, pairs)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "KEY")
	assert.Contains(t, output, "VALUE")
	assert.Contains(t, output, "key1")
	assert.Contains(t, output, "value1")
	assert.Contains(t, output, "key2")
	assert.Contains(t, output, "value2")
}
