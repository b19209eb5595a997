package procattr

import (
	"os/exec"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_ConfiguresSysProcAttr(t *testing.T) {
	t.Parallel()
	cmd := exec.Command("echo", "test")
	require.Nil(t, cmd.SysProcAttr)

	Set(cmd)

	require.NotNil(t, cmd.SysProcAttr)
	assert.True(t, cmd.SysProcAttr.Setpgid, "Setpgid should be true for process group creation")
}

func TestSignalGroup_NilProcess(t *testing.T) {
	t.Parallel()
	err := SignalGroup(nil, syscall.SIGTERM)
	assert.NoError(t, err, "SignalGroup with nil process should be a no-op")
}

func TestKillGroup_NilProcess(t *testing.T) {
	t.Parallel()
	assert.NoError(t, KillGroup(nil))
}
