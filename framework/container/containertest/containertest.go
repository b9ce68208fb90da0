// Package containertest provides test helpers for container-based code.
package containertest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-scoped/framework/container"
)

// Checkpoint saves c's state and restores it when the test ends, so the test
// can register fakes on a shared root container.
//
//	func TestCreateTodo(t *testing.T) {
//	    containertest.Checkpoint(t, app.Container)
//	    app.MustRegister("todos.repository", container.Constant(fakeRepo))
//	    ...
//	}
func Checkpoint(t testing.TB, c *container.Container) {
	t.Helper()
	require.NoError(t, c.Save(), "containertest: save")
	t.Cleanup(func() {
		require.NoError(t, c.Restore(), "containertest: restore")
	})
}

// Fake registers value under name as a constant for the rest of the test.
func Fake(t testing.TB, c *container.Container, name string, value any) {
	t.Helper()
	Checkpoint(t, c)
	require.NoError(t, c.Register(name, container.Constant(value)))
}
