package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	CoreVersion = "1.2.3"
	defer func() { CoreVersion = "unknown" }()

	var out bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Core Version: v1.2.3")

	out.Reset()
	cmd = NewVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})
	require.NoError(t, cmd.Execute())
	assert.JSONEq(t, `{"version":"1.2.3","golang_version":"unknown","build_time":"unknown"}`, out.String())
}
