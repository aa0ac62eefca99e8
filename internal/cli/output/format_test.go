package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "table", FormatTable.String())
	assert.Equal(t, "json", FormatJSON.String())
	assert.Equal(t, "yaml", FormatYAML.String())
}

func TestPrinter_TableFormat(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatTable)

	assert.Equal(t, FormatTable, printer.Format())

	err := printer.Print(Pairs{{[]byte("k"), []byte("v")}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "KEY")
	assert.Contains(t, buf.String(), "k")
}

func TestPrinter_JSONFallbackForNonTableData(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatTable)

	err := printer.Print(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"n": 1`)
}

func TestPrinter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, FormatJSON)

	err := printer.Print(map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"key": "value"`)
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "plain ascii", input: []byte("hello"), want: "hello"},
		{name: "empty", input: nil, want: ""},
		{name: "null byte", input: []byte{0x00}, want: `\x00`},
		{name: "tuple-ish key", input: []byte{0x02, 'a', 0x00}, want: `\x02a\x00`},
		{name: "high bytes", input: []byte{0xFF, 0xFE}, want: `\xff\xfe`},
		{name: "backslash escaped", input: []byte(`a\b`), want: `a\x5cb`},
		{name: "space preserved", input: []byte("a b"), want: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.input))
		})
	}
}
