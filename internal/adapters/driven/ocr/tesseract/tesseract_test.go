package tesseract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docsight/internal/adapters/driven/execrun"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf and tabs", "Policy\tNumber:\r\nPOL-001\r\n", "Policy Number:\nPOL-001"},
		{"multi space", "Total   Rs.  4,500", "Total Rs. 4,500"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"box noise", "Header\n-----\nBody", "Header\n\nBody"},
		{"form feed", "page one\fpage two", "page one\npage two"},
		{"digits untouched", "Claim 01 02", "Claim 01 02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestEngine_Recognize(t *testing.T) {
	fake := &execrun.Fake{
		Handler: func(string, []string) ([]byte, []byte, error) {
			return []byte("Invoice  Number:\tINV-1\r\n\r\n\r\n\r\nTotal"), nil, nil
		},
	}
	e := New(Config{Language: "eng+hin", PSM: 6}, fake)

	text, err := e.Recognize(context.Background(), "/tmp/p1.png")
	require.NoError(t, err)
	assert.Equal(t, "Invoice Number: INV-1\n\nTotal", text)

	require.Len(t, fake.Calls, 1)
	assert.Equal(t, "tesseract", fake.Calls[0].Name)
	assert.Equal(t, []string{"/tmp/p1.png", "stdout", "-l", "eng+hin", "--psm", "6"}, fake.Calls[0].Args)
}

func TestEngine_RecognizeFailure(t *testing.T) {
	fake := &execrun.Fake{
		Handler: func(string, []string) ([]byte, []byte, error) {
			return nil, []byte("Error opening data file eng.traineddata"), errors.New("exit status 1")
		},
	}
	_, err := New(Config{}, fake).Recognize(context.Background(), "/tmp/p1.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traineddata")
}

func TestEngine_Available(t *testing.T) {
	missing := New(Config{}, &execrun.Fake{})
	assert.Error(t, missing.Available(context.Background()))

	installed := New(Config{}, &execrun.Fake{Installed: map[string]bool{"tesseract": true}})
	assert.NoError(t, installed.Available(context.Background()))

	broken := New(Config{}, &execrun.Fake{
		Installed: map[string]bool{"tesseract": true},
		Handler: func(string, []string) ([]byte, []byte, error) {
			return nil, []byte("libleptonica missing"), errors.New("exit status 127")
		},
	})
	assert.Error(t, broken.Available(context.Background()))
	assert.Equal(t, "tesseract", broken.Name())
}
