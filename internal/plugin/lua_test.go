// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/confrun/confrun/pkg/module"
	"github.com/confrun/confrun/pkg/status"
)

func luaStatusOf(t *testing.T, n float64) (status.Code, error) {
	t.Helper()
	return luaStatus(lua.LNumber(n))
}

func TestLuaStatusNonNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   lua.LValue
		want    status.Code
		wantErr bool
	}{
		{"nil", lua.LNil, status.Success, false},
		{"true", lua.LTrue, status.Success, false},
		{"false", lua.LFalse, status.Failure, false},
		{"string", lua.LString("ok"), status.Failure, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := luaStatus(tt.value)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// reentrantEscalator runs the handler again for "Nested" commands, the way a
// LaunchSections into a section of the same module does.
type reentrantEscalator struct {
	h     module.Handler
	ec    *module.ExecutionContext
	calls []string
}

func (e *reentrantEscalator) Invoke(moduleName, command, args string) status.Code {
	e.calls = append(e.calls, moduleName+":"+command+"="+args)
	if command == "Nested" {
		return e.h.Handle(e.ec, "Inner", args, e, quietLogger())
	}
	return status.Success
}

func TestLuaHandlerReentry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePlugin(t, dir, "Twice.lua", `
function CommandHandler(command, args)
	if command == "Inner" then
		return escalate("General", "Echo", "inner " .. getenv("STAGE"))
	end
	local code = escalate("General", "Nested", args)
	if code ~= status.Success then return code end
	return escalate("General", "Echo", "outer " .. getenv("STAGE"))
end
`)

	d := NewDiscoverer(dir)
	defer d.Close()
	h, err := d.Load("Twice")
	require.NoError(t, err)

	ec := module.NewExecutionContext(module.WithBaseEnv(map[string]string{"STAGE": "one"}))
	esc := &reentrantEscalator{h: h, ec: ec}

	require.Equal(t, status.Success, h.Handle(ec, "Outer", "x", esc, quietLogger()))
	assert.Equal(t, []string{
		"General:Nested=x",
		"General:Echo=inner one",
		"General:Echo=outer one",
	}, esc.calls)

	// Bindings are cleared once the outermost call returns.
	lh, ok := h.(*luaHandler)
	require.True(t, ok)
	assert.Nil(t, lh.esc)
	assert.Nil(t, lh.ec)
}
