package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap params keep the argon2id tests fast.
func testArgon2idParams() Argon2idParams {
	return Argon2idParams{
		MemoryKiB:   8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestSHA256Codec_Fixture(t *testing.T) {
	t.Parallel()

	got, err := SHA256Codec{}.Encode("password")
	require.NoError(t, err)
	assert.Equal(t, "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", got)
}

func TestSHA256Codec_Deterministic(t *testing.T) {
	t.Parallel()

	c := SHA256Codec{}
	for _, in := range []string{"", "abc123", "ÄÖÜ-unicode", strings.Repeat("x", 4096)} {
		a, _ := c.Encode(in)
		b, _ := c.Encode(in)
		if a != b {
			t.Fatalf("Encode(%q) not deterministic: %q vs %q", in, a, b)
		}
		if len(a) != 64 {
			t.Fatalf("Encode(%q) length=%d want=64", in, len(a))
		}
	}
}

func TestSHA256Codec_Verify(t *testing.T) {
	t.Parallel()

	c := SHA256Codec{}
	digest, _ := c.Encode("hunter22")

	ok, err := c.Verify(digest, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Verify(digest, "hunter23")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Verify("not-a-digest", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidDigest)
	assert.False(t, ok)

	ok, err = c.Verify(strings.ToUpper(digest), "hunter22")
	assert.ErrorIs(t, err, ErrInvalidDigest)
	assert.False(t, ok)
}

func TestArgon2idCodec_EncodeVerify(t *testing.T) {
	t.Parallel()

	c, err := NewArgon2idCodec(testArgon2idParams())
	require.NoError(t, err)

	d1, err := c.Encode("password1")
	require.NoError(t, err)
	d2, err := c.Encode("password1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(d1, "$argon2id$v=19$m=8192,t=1,p=1$"))
	assert.NotEqual(t, d1, d2, "salted digests must differ")

	ok, err := c.Verify(d1, "password1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Verify(d1, "password2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2idCodec_VerifyLegacySHA256(t *testing.T) {
	t.Parallel()

	c, err := NewArgon2idCodec(testArgon2idParams())
	require.NoError(t, err)

	ok, err := c.Verify("5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", "password")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2idCodec_RejectsMalformedDigests(t *testing.T) {
	t.Parallel()

	c, err := NewArgon2idCodec(testArgon2idParams())
	require.NoError(t, err)

	cases := []string{
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=8192,t=1",
		// Memory far above the configured limit.
		"$argon2id$v=19$m=1048576,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5",
	}
	for _, d := range cases {
		ok, err := c.Verify(d, "password")
		if err != ErrInvalidDigest || ok {
			t.Fatalf("Verify(%q)=(%v,%v) want=(false,ErrInvalidDigest)", d, ok, err)
		}
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "", want: CodecSHA256},
		{name: "sha256", want: CodecSHA256},
		{name: " ARGON2ID ", want: CodecArgon2id},
		{name: "bcrypt", wantErr: true},
	}

	for _, tc := range cases {
		c, err := New(tc.name, testArgon2idParams())
		if tc.wantErr {
			require.ErrorIs(t, err, ErrUnknownCodec)
			assert.Nil(t, c)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, c.Name())
	}
}

func TestNewArgon2idCodec_InvalidParams(t *testing.T) {
	t.Parallel()

	p := testArgon2idParams()
	p.SaltLength = 4
	_, err := NewArgon2idCodec(p)
	require.Error(t, err)

	p = testArgon2idParams()
	p.Iterations = 0
	_, err = NewArgon2idCodec(p)
	require.Error(t, err)
}

func TestArgon2idParamsFromEnv(t *testing.T) {
	t.Setenv("ACCOUNTS_ARGON2_MEMORY_KIB", "16384")
	t.Setenv("ACCOUNTS_ARGON2_ITERATIONS", "2")
	t.Setenv("ACCOUNTS_ARGON2_PARALLELISM", "1")

	p, err := Argon2idParamsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, uint32(16384), p.MemoryKiB)
	assert.Equal(t, uint32(2), p.Iterations)
	assert.Equal(t, uint8(1), p.Parallelism)
	assert.Equal(t, uint32(16), p.SaltLength)

	t.Setenv("ACCOUNTS_ARGON2_ITERATIONS", "0")
	_, err = Argon2idParamsFromEnv()
	require.Error(t, err)
}
