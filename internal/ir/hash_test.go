package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestDeterminism(t *testing.T) {
	tl := Timeline{
		{Frame: 10, Notification: Next("a")},
		{Frame: 20, Notification: Complete()},
	}

	d1, err := Digest(tl)
	require.NoError(t, err)
	d2, err := Digest(append(Timeline{}, tl...))
	require.NoError(t, err)

	assert.Equal(t, d1, d2, "Digest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestDigestChangesWithInput(t *testing.T) {
	base := Timeline{{Frame: 10, Notification: Next("a")}}

	d1, err := Digest(base)
	require.NoError(t, err)
	d2, err := Digest(Timeline{{Frame: 20, Notification: Next("a")}})
	require.NoError(t, err)
	d3, err := Digest(Timeline{{Frame: 10, Notification: Next("b")}})
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2, "Different frames should produce different digests")
	assert.NotEqual(t, d1, d3, "Different values should produce different digests")
}

func TestDigestNormalizesErrors(t *testing.T) {
	d1, err := Digest(Timeline{{Frame: 0, Notification: Error(errors.New("boom"))}})
	require.NoError(t, err)
	d2, err := Digest(Timeline{{Frame: 0, Notification: Error(errors.New("boom"))}})
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}

func TestHashWithDomainSeparation(t *testing.T) {
	data := []byte(`{"kind":"C"}`)
	assert.NotEqual(t, hashWithDomain(DomainTrace, data), hashWithDomain("other/v1", data))
}
