package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     []byte
		want     Format
		wantErr  error
	}{
		{name: "pdf content", fileName: "cours.bin", data: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), want: FormatPDF},
		{name: "pdf extension", fileName: "Cours.PDF", data: []byte{0x00, 0x01, 0x02}, want: FormatPDF},
		{name: "plain text", fileName: "notes", data: []byte("La mitose est une étape."), want: FormatText},
		{name: "markdown extension", fileName: "chapitre.md", data: []byte("# Titre"), want: FormatText},
		{name: "image", fileName: "schema.png", data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.fileName, tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_Ready(t *testing.T) {
	var missing *Document
	assert.False(t, missing.Ready())
	assert.False(t, (&Document{Status: StatusPending}).Ready())
	assert.False(t, (&Document{Status: StatusFailed}).Ready())
	assert.True(t, (&Document{Status: StatusProcessed}).Ready())
}

func TestNormalizer_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		format  Format
		want    string
		wantErr error
	}{
		{name: "trims surrounding whitespace", raw: "\n  La cellule.\t\n", format: FormatText, want: "La cellule."},
		{name: "strips byte order mark", raw: "\uFEFFLa cellule.", format: FormatText, want: "La cellule."},
		{name: "keeps inner line breaks", raw: "Un.\n\nDeux.", format: FormatPDF, want: "Un.\n\nDeux."},
		{name: "empty text", raw: "", format: FormatText, wantErr: ErrEmptyDocument},
		{name: "whitespace only", raw: " \n\t ", format: FormatPDF, wantErr: ErrEmptyDocument},
		{name: "garbled pdf text", raw: "ab\x00\x01", format: FormatPDF, wantErr: ErrUnreadableDocument},
		{name: "control ratio at the limit", raw: "abcd\x00", format: FormatPDF, want: "abcd\x00"},
		{name: "control characters are only checked for pdf", raw: "ab\x00\x01", format: FormatText, want: "ab\x00\x01"},
		{name: "tabs and line breaks are not control noise", raw: "a\tb\r\nc\n\nd", format: FormatPDF, want: "a\tb\r\nc\n\nd"},
	}

	normalizer := NewNormalizer(DefaultMaxControlRatio)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizer.Normalize(tt.raw, tt.format)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPDFText(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "latin-1 literals joined with spaces",
			data: []byte("%PDF-1.4\nBT (La mitose est une \xe9tape) Tj ET\nBT (de la division\\ncellulaire.) Tj ET\n()"),
			want: "La mitose est une étape de la division cellulaire.",
		},
		{
			name: "escaped backslash",
			data: []byte(`%PDF-1.4 (C:\\cours) Tj`),
			want: `C:\cours`,
		},
		{
			name: "no literal strings",
			data: []byte("%PDF-1.4\n1 0 obj << /Length 0 >> endobj"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractPDFText(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
