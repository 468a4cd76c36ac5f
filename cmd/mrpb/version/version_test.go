package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	command := Command()

	assert.Equal(t, "version", command.Use)
	assert.Contains(t, command.Short, "version")
}

func TestVersionOutput(t *testing.T) {
	out := &bytes.Buffer{}
	command := Command()
	command.SetOut(out)
	command.SetArgs([]string{})

	assert.NoError(t, command.Execute())
	assert.Equal(t, "REPL_VERSION\n", out.String())
}
