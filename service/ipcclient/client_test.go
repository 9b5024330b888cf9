//go:build !windows

package ipcclient

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pine/pine/pkg/machine"
	"github.com/go-pine/pine/service"
	"github.com/go-pine/pine/service/ipcserver"
)

func startServer(t *testing.T, m machine.Machine) *Client {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "pine.sock")
	listener, err := service.NewLocalListener("unix", sock)
	require.NoError(t, err)
	s := ipcserver.NewServer(&service.Config{
		Listener:    listener,
		Machine:     m,
		ReadTimeout: time.Second,
	})
	require.NoError(t, s.Run())
	t.Cleanup(func() { s.Stop() })
	return NewClient(&Config{Network: "unix", Addr: sock, Timeout: 5 * time.Second})
}

func TestClientRoundTrip(t *testing.T) {
	c := startServer(t, machine.NewRAM(1<<16))

	require.NoError(t, c.Write8(0x10, 0xA5))
	require.NoError(t, c.Write16(0x20, 0xBEEF))
	require.NoError(t, c.Write32(0x30, 0xDEADBEEF))
	require.NoError(t, c.Write64(0x40, 0x0123456789ABCDEF))

	v8, err := c.Read8(0x10)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xA5), v8)

	v16, err := c.Read16(0x20)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), v16)

	v32, err := c.Read32(0x30)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v32)

	v64, err := c.Read64(0x40)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789ABCDEF), v64)
}

func TestClientBatch(t *testing.T) {
	ram := machine.NewRAM(1 << 16)
	ram.Write32(0x100, 0xCAFEBABE)
	c := startServer(t, ram)

	b := NewBatch()
	b.Read32(0x100)
	b.Write8(0x200, 0x7F)
	b.Read8(0x200)

	vals, err := c.Do(b)
	require.NoError(t, err)
	// One value per read, in request order; the middle write is visible to
	// the read that follows it in the same batch.
	require.Equal(t, []uint64{0xCAFEBABE, 0x7F}, vals)
}

func TestClientRequestFailed(t *testing.T) {
	ram := machine.NewRAM(1 << 16)
	ram.SetActive(false)
	c := startServer(t, ram)

	_, err := c.Read32(0x1000)
	require.ErrorIs(t, err, ErrRequestFailed)
}

func TestClientBreakerOpensOnDeadEndpoint(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "nobody-home.sock")
	c := NewClient(&Config{
		Network: "unix",
		Addr:    sock,
		Timeout: 100 * time.Millisecond,
		Breaker: true,
	})

	for i := 0; i < 3; i++ {
		_, err := c.Read32(0x0)
		require.Error(t, err)
		require.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}

	// Three straight transport failures trip the breaker; the next request
	// is refused without touching the socket.
	_, err := c.Read32(0x0)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}
