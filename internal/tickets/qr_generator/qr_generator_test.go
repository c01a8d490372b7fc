package qr

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPayload(t *testing.T) {
	g := NewGenerator("cine-juventude", 0)
	assert.Equal(t, "CINE-JUVENTUDE:CJ-ABC123", g.TicketPayload("CJ-ABC123"))
}

func TestExtractCode(t *testing.T) {
	g := NewGenerator("CINE-JUVENTUDE", 0)

	assert.Equal(t, "CJ-ABC123", g.ExtractCode("cj-abc123"))
	assert.Equal(t, "CJ-ABC123", g.ExtractCode(" CINE-JUVENTUDE:CJ-ABC123 "))
	assert.Equal(t, "CJ-ABC123", g.ExtractCode("cine-juventude:cj-abc123"))
	assert.Equal(t, "CJ-ABC123", g.ExtractCode("CINE-JUVENTUDE: cj-abc123\n"))
	assert.Equal(t, "", g.ExtractCode("   "))
}

func TestTicketPNG(t *testing.T) {
	g := NewGenerator("CINE-JUVENTUDE", 128)

	data, err := g.TicketPNG("CJ-ABC123")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestPNG_Empty(t *testing.T) {
	_, err := NewGenerator("X", 0).PNG("")
	assert.Error(t, err)
}
