package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorityToHostWithPort(t *testing.T) {
	domain, err := AuthorityToHost("[::1]:3902")
	require.NoError(t, err)
	assert.Equal(t, "[::1]", domain)

	domain2, err := AuthorityToHost("garage.tld:65200")
	require.NoError(t, err)
	assert.Equal(t, "garage.tld", domain2)

	domain3, err := AuthorityToHost("127.0.0.1:80")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", domain3)
}

func TestAuthorityToHostWithoutPort(t *testing.T) {
	domain, err := AuthorityToHost("[::1]")
	require.NoError(t, err)
	assert.Equal(t, "[::1]", domain)

	domain2, err := AuthorityToHost("garage.tld")
	require.NoError(t, err)
	assert.Equal(t, "garage.tld", domain2)

	domain3, err := AuthorityToHost("127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", domain3)
}

func TestAuthorityToHostEmptyIsError(t *testing.T) {
	_, err := AuthorityToHost("")
	assert.Error(t, err)
}

func TestAuthorityToHostUnclosedBracketIsError(t *testing.T) {
	_, err := AuthorityToHost("[::1")
	assert.Error(t, err)
}

func TestHostToBucket(t *testing.T) {
	assert.Equal(t, "john.doe", HostToBucket("john.doe.garage.tld", ".garage.tld"))
	assert.Equal(t, "john.doe", HostToBucket("john.doe.garage.tld", "garage.tld"))
	assert.Equal(t, "john.doe.com", HostToBucket("john.doe.com", "garage.tld"))
	assert.Equal(t, "john.doe.com", HostToBucket("john.doe.com", ".garage.tld"))
	assert.Equal(t, "garage.tld", HostToBucket("garage.tld", "garage.tld"))
	assert.Equal(t, "garage.tld", HostToBucket("garage.tld", ".garage.tld"))
}
