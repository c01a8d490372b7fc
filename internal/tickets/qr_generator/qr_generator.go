package qr

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"cine-storefront/internal/utils"
)

const DefaultSize = 256

// Generator renders scannable PNG codes for tickets and PIX payloads.
type Generator struct {
	prefix string
	size   int
}

func NewGenerator(prefix string, size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{prefix: strings.ToUpper(strings.TrimSpace(prefix)), size: size}
}

// TicketPayload is the text encoded on a ticket: "<PREFIX>:<order_code>".
func (g *Generator) TicketPayload(orderCode string) string {
	return g.prefix + ":" + orderCode
}

// ExtractCode accepts either a bare order code or a scanned ticket payload and
// returns the code, uppercased and trimmed.
func (g *Generator) ExtractCode(raw string) string {
	code := utils.NormalizeCode(raw)
	if g.prefix != "" {
		code = strings.TrimPrefix(code, g.prefix+":")
	}
	return utils.NormalizeCode(code)
}

func (g *Generator) TicketPNG(orderCode string) ([]byte, error) {
	return g.PNG(g.TicketPayload(orderCode))
}

// PNG encodes arbitrary content, used for the PIX copy-and-paste payload.
func (g *Generator) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, fmt.Errorf("empty qr content")
	}
	png, err := qrcode.Encode(content, qrcode.Medium, g.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}
	return png, nil
}
