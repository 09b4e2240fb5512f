package classify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
	}{
		// Encrypted
		{name: "encrypted archive", input: "ABCDEFGHIJKL.zip.AES256", want: Encrypted},
		{name: "encrypted without archive suffix", input: "notes.AES256", want: Encrypted},
		{name: "suffix only encrypted", input: ".AES256", want: Encrypted},
		{name: "encrypted wins over zip", input: "a.ZIP.AES256", want: Encrypted},

		// Plain archives
		{name: "lower-case zip", input: "photos.zip", want: PlainArchive},
		{name: "upper-case zip", input: "PHOTOS.ZIP", want: PlainArchive},
		{name: "suffix only zip", input: ".zip", want: PlainArchive},
		{name: "zip after encrypted marker", input: "x.AES256.zip", want: PlainArchive},

		// Raw files
		{name: "text file", input: "notes.txt", want: RawFile},
		{name: "no suffix", input: "README", want: RawFile},
		{name: "empty name", input: "", want: RawFile},
		{name: "mixed-case zip", input: "photos.Zip", want: RawFile},
		{name: "lower-case encrypted marker", input: "notes.aes256", want: RawFile},
		{name: "mixed-case encrypted marker", input: "notes.Aes256", want: RawFile},
		{name: "zip without dot", input: "archivezip", want: RawFile},
		{name: "marker without dot", input: "fileAES256", want: RawFile},
		{name: "marker in the middle", input: "a.AES256.txt", want: RawFile},
		{name: "trailing space", input: "photos.zip ", want: RawFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input))
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, PlainArchive, Classify("same.zip"))
	}
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "raw", RawFile.String())
	assert.Equal(t, "archive", PlainArchive.String())
	assert.Equal(t, "encrypted", Encrypted.String())
	assert.Equal(t, "category(42)", Category(42).String())
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "raw", want: RawFile},
		{input: "archive", want: PlainArchive},
		{input: "encrypted", want: Encrypted},
		{input: " Encrypted ", want: Encrypted},
		{input: "bogus", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategory_JSON(t *testing.T) {
	type wrapper struct {
		Category Category `json:"category"`
	}

	data, err := json.Marshal(wrapper{Category: Encrypted})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"encrypted"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"category":"archive"}`), &w))
	assert.Equal(t, PlainArchive, w.Category)

	assert.Error(t, json.Unmarshal([]byte(`{"category":"nope"}`), &w))
}

func TestEncryptedName(t *testing.T) {
	assert.Equal(t, "ABCDEFGHIJKL.zip.AES256", EncryptedName("ABCDEFGHIJKL.zip"))
	assert.Equal(t, "photos.ZIP.AES256", EncryptedName("photos.ZIP"))
}

func TestDecryptedName(t *testing.T) {
	t.Run("strips suffix", func(t *testing.T) {
		got, err := DecryptedName("secret.zip.AES256")
		require.NoError(t, err)
		assert.Equal(t, "secret.zip", got)
	})

	t.Run("strips only the last suffix", func(t *testing.T) {
		got, err := DecryptedName("a.AES256.AES256")
		require.NoError(t, err)
		assert.Equal(t, "a.AES256", got)
	})

	t.Run("suffix only fails", func(t *testing.T) {
		_, err := DecryptedName(".AES256")
		assert.ErrorIs(t, err, ErrNoBaseName)
	})

	t.Run("missing suffix fails", func(t *testing.T) {
		_, err := DecryptedName("secret.zip")
		assert.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		got, err := DecryptedName(EncryptedName("XYZ.zip"))
		require.NoError(t, err)
		assert.Equal(t, "XYZ.zip", got)
	})
}
