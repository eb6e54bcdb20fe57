// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecret(t *testing.T) {
	t.Cleanup(func() { loadedSecrets = nil })

	assert.Empty(t, secret("semantic-scholar-api-key"), "no secrets loaded")

	loadedSecrets = map[string]string{"crossref-mailto": "library@example.org"}
	assert.Equal(t, "library@example.org", secret("crossref-mailto"))
	assert.Empty(t, secret("semantic-scholar-api-key"))
}
