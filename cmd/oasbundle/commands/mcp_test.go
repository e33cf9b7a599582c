package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleMCP_Arguments(t *testing.T) {
	assert.NoError(t, HandleMCP([]string{"--help"}))
	assert.ErrorContains(t, HandleMCP([]string{"openapi.yaml"}), "takes no arguments")
	assert.Error(t, HandleMCP([]string{"--port", "8080"}))
}
