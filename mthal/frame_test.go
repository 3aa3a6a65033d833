package mthal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameMake(t *testing.T) {
	f := frameMake(bromCmdRead32, BaseAddrFirmware, 4)
	assert.Equal(t, []byte{0xaf, 0x20, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04}, f.Bytes())

	assert.Equal(t, []byte{0xd9}, frameMake(agentCmdFinish).Bytes())
}

func TestPacket(t *testing.T) {
	data := []byte{0x10, 0x20, 0xff}

	packet := packetEncode(data)
	assert.Equal(t, []byte{0x10, 0x20, 0xff, 0x01, 0x2f}, packet)

	out, err := packetDecode(packet, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, out)

	packet[1] ^= 0x40
	_, err = packetDecode(packet, len(data))
	assert.ErrorIs(t, err, ErrorMalformedFrame)

	_, err = packetDecode(packet[:4], len(data))
	assert.ErrorIs(t, err, ErrorMalformedFrame)
}

func TestSwapBytes(t *testing.T) {
	in := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	assert.Equal(t, []byte{2, 1, 4, 3, 6, 5, 8, 7}, swapBytes(in, 2))
	assert.Equal(t, []byte{4, 3, 2, 1, 8, 7, 6, 5}, swapBytes(in, 4))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, in)
}
