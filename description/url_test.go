package description

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLBaseFromDeclared(t *testing.T) {
	base, err := URLBase("http://h:80", "http://h:80/desc.xml")
	require.NoError(t, err)
	assert.Equal(t, "http://h:80/", base)
}

func TestURLBaseDerivedFromLocation(t *testing.T) {
	base, err := URLBase("", "http://192.0.2.5:8080/dev/desc.xml")
	require.NoError(t, err)
	assert.Equal(t, "http://192.0.2.5:8080/", base)
}

func TestResolveURLAbsolutePath(t *testing.T) {
	got, err := ResolveURL("http://h/dev/", "/svc/ctl")
	require.NoError(t, err)
	assert.Equal(t, "http://h/svc/ctl", got)
}

func TestResolveURLRelativePath(t *testing.T) {
	got, err := ResolveURL("http://h/dev/", "svc/ctl")
	require.NoError(t, err)
	assert.Equal(t, "http://h/dev/svc/ctl", got)
}
