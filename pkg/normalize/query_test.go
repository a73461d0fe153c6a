package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShieldPrefixAvoidsCollisions(t *testing.T) {
	assert.Nil(t, newShield("?a=1"))

	sh := newShield("?a=%2F")
	require.NotNil(t, sh)
	assert.Equal(t, "__normalize_url_encoded_reserved__0__", sh.prefix)

	sh = newShield("?__normalize_url_encoded_reserved__0__=1&b=%2f")
	require.NotNil(t, sh)
	assert.Equal(t, "__normalize_url_encoded_reserved__1__", sh.prefix)

	applied := sh.apply("?b=%2f&c=%3a")
	assert.Equal(t, "?b=__normalize_url_encoded_reserved__1__2F&c=__normalize_url_encoded_reserved__1__3A", applied)
	assert.Equal(t, "?b=/&c=:", sh.decode(applied))
	assert.Equal(t, "?b=%2F&c=%3A", sh.restore(applied))
}

func TestNilShieldIsNoop(t *testing.T) {
	var sh *shield
	assert.Equal(t, "?a=%2F", sh.apply("?a=%2F"))
	assert.Equal(t, "x", sh.decode("x"))
	assert.Equal(t, "?a", sh.restore("?a"))
}

func TestCompareUTF16(t *testing.T) {
	assert.Negative(t, compareUTF16("a", "b"))
	assert.Negative(t, compareUTF16("a", "ab"))
	assert.Zero(t, compareUTF16("é", "é"))
	// U+1F600 is a surrogate pair starting at 0xD83D, below U+FF21.
	assert.Negative(t, compareUTF16("😀", "Ａ"))
	assert.Positive(t, compareUTF16("😀", "A"))
}

func TestDecodeQueryKey(t *testing.T) {
	assert.Equal(t, "foo bar", decodeQueryKey("foo+bar"))
	assert.Equal(t, "foo bar", decodeQueryKey("foo%20bar"))
	assert.Equal(t, "a&b", decodeQueryKey("a%26b"))
	assert.Equal(t, "%zz", decodeQueryKey("%zz"))
	assert.Equal(t, "�", decodeQueryKey("%E0%A4"))
}

func TestNormalizeEmptyValues(t *testing.T) {
	tests := []struct {
		search   string
		mode     EmptyQueryValue
		original string
		expected string
	}{
		{"?a=&b=1", EmptyValuePreserve, "?a&b=1", "?a&b=1"},
		{"?a=&b=1", EmptyValuePreserve, "?a=&b=1", "?a=&b=1"},
		{"?a&b=", EmptyValueAlways, "", "?a=&b="},
		{"?a=&b", EmptyValueNever, "", "?a&b"},
		{"?x+y=", EmptyValueNever, "", "?x%20y"},
		{"?=", EmptyValueNever, "", "?="},
		{"?&&", EmptyValueAlways, "", ""},
		{"", EmptyValuePreserve, "?a", ""},
	}

	for _, tc := range tests {
		t.Run(tc.search+"/"+string(tc.mode), func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizeEmptyValues(tc.search, tc.mode, tc.original))
		})
	}
}
