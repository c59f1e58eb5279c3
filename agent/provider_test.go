package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIProvider_Invoke_Success(t *testing.T) {
	p := NewCLIProvider(CommandSpec{Name: "sh", Args: []string{"-c", "cat > /dev/null; echo done"}})

	out, err := p.Invoke(context.Background(), "fix the lint error", t.TempDir())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Contains(t, out.Detail, "done")
}

func TestCLIProvider_Invoke_NonZeroExit(t *testing.T) {
	p := NewCLIProvider(CommandSpec{Name: "sh", Args: []string{"-c", "echo boom 1>&2; exit 1"}})

	out, err := p.Invoke(context.Background(), "fix it", t.TempDir())
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Detail, "boom")
}

func TestCLIProvider_Invoke_PassesWorkingDir(t *testing.T) {
	dir := t.TempDir()
	p := NewCLIProvider(CommandSpec{Name: "sh", Args: []string{"-c", "pwd"}})

	out, err := p.Invoke(context.Background(), "", dir)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, dir, strings.TrimSpace(out.Detail))
}

func TestCLIProvider_Invoke_ForwardsBudgetEnvVar(t *testing.T) {
	p := NewCLIProvider(CommandSpec{
		Name:      "sh",
		Args:      []string{"-c", "echo $" + budgetEnvVar},
		BudgetUSD: 2.5,
	})

	out, err := p.Invoke(context.Background(), "", t.TempDir())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Contains(t, out.Detail, "2.5")
}

func TestCLIProvider_Invoke_NoBudgetEnvVarWhenZero(t *testing.T) {
	p := NewCLIProvider(CommandSpec{Name: "sh", Args: []string{"-c", "echo $" + budgetEnvVar}})

	out, err := p.Invoke(context.Background(), "", t.TempDir())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "", strings.TrimSpace(out.Detail))
}
