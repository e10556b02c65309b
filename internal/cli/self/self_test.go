package self

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	v, err := ParseVersion("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	v, err = ParseVersion("0.4.0")
	require.NoError(t, err)
	assert.Equal(t, "0.4.0", v.String())

	_, err = ParseVersion("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing current version 'dev'")
}

func TestRepositorySlug(t *testing.T) {
	t.Parallel()

	slug, err := RepositorySlug("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRepository, slug)

	slug, err = RepositorySlug("someone/fork")
	require.NoError(t, err)
	assert.Equal(t, "someone/fork", slug)

	for _, bad := range []string{"noslash", "/repo", "owner/", "a/b/c"} {
		_, err := RepositorySlug(bad)
		assert.Error(t, err, bad)
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("Y\n"), &out))
	assert.Contains(t, out.String(), "Do you want to update?")
	assert.False(t, confirm(strings.NewReader("\n"), &out))
	assert.False(t, confirm(strings.NewReader(""), &out))
}
