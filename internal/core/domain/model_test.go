package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{name: "zero", in: 0, want: "0 Bytes"},
		{name: "bytes", in: 512, want: "512 Bytes"},
		{name: "one kilobyte", in: 1024, want: "1 KB"},
		{name: "fractional kilobytes", in: 1536, want: "1.5 KB"},
		{name: "rounded to two decimals", in: 1234567, want: "1.18 MB"},
		{name: "megabytes", in: 2 * 1024 * 1024, want: "2 MB"},
		{name: "gigabytes", in: 3 * 1024 * 1024 * 1024, want: "3 GB"},
		{name: "clamped to largest unit", in: 2048 * 1024 * 1024 * 1024, want: "2048 GB"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatFileSize(tc.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Format
		wantErr bool
	}{
		{name: "png", in: "png", want: FormatPNG},
		{name: "upper case", in: "JPG", want: FormatJPG},
		{name: "padded", in: " webp ", want: FormatWEBP},
		{name: "tif alias", in: "tif", want: FormatTIF},
		{name: "unknown", in: "svg", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFormat(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, "jpeg", FormatJPG.Extension())
	assert.Equal(t, "jpeg", FormatJPEG.Extension())
	assert.Equal(t, "png", FormatPNG.Extension())
	assert.Equal(t, "tif", FormatTIF.Extension())
	assert.Equal(t, "jpeg", Format("JPG").Extension())
}

func TestParameterFields(t *testing.T) {
	name, value := TargetSizeKB(250).Field()
	assert.Equal(t, "size", name)
	assert.Equal(t, "250", value)
	assert.Equal(t, "/process-image/", TargetSizeKB(250).Endpoint())

	name, value = TargetFormat(FormatWEBP).Field()
	assert.Equal(t, "format", name)
	assert.Equal(t, "webp", value)
	assert.Equal(t, "/convert-image/", TargetFormat(FormatWEBP).Endpoint())
}

func TestFailureDisplayMessage(t *testing.T) {
	tests := []struct {
		name    string
		failure *Failure
		want    string
	}{
		{
			name:    "network",
			failure: &Failure{Kind: NetworkUnreachable, Diagnostic: "dial tcp: connection refused"},
			want:    MessageNetworkUnreachable,
		},
		{
			name:    "server",
			failure: &Failure{Kind: ServerError, Diagnostic: "Server error: bad format", StatusCode: 500},
			want:    "Error: Server error: bad format",
		},
		{
			name:    "unknown without message",
			failure: &Failure{Kind: Unknown},
			want:    "Failed to convert image. Please try again.",
		},
		{
			name:    "network ignores fallback",
			failure: &Failure{Kind: NetworkUnreachable},
			want:    MessageNetworkUnreachable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.failure.DisplayMessage("Failed to convert image. Please try again."))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	assert.Equal(t, MessageMissingFile, ValidationMessage(ErrMissingFile))
	assert.Equal(t, MessageOutOfRange, ValidationMessage(ErrOutOfRange))
	assert.Equal(t, "boom", ValidationMessage(errors.New("boom")))
}

func TestPhaseBusy(t *testing.T) {
	for _, p := range []Phase{Idle, Succeeded, Failed} {
		assert.False(t, p.Busy(), p.String())
	}
	for _, p := range []Phase{Uploading, Processing} {
		assert.True(t, p.Busy(), p.String())
	}
}
