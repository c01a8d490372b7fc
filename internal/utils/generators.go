package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OrderCodePrefix = "CJ-"
	base36Alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GenerateID returns a random UUID used as the opaque order id.
func GenerateID() string {
	return uuid.NewString()
}

// GenerateOrderCode builds CJ-<base36 ms timestamp><3 random base36 chars>, uppercased.
func GenerateOrderCode(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	return strings.ToUpper(OrderCodePrefix + ts + randomBase36(3))
}

// GenerateReceiptName returns <unix ms>-<random base36>.<ext> for an uploaded file.
func GenerateReceiptName(now time.Time, originalName string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalName)), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%d-%s.%s", now.UnixMilli(), randomBase36(6), ext)
}

// NormalizeCode uppercases and trims a scanned or typed order code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DigitsOnly strips everything but 0-9, used for WhatsApp numbers.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func randomBase36(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = base36Alphabet[time.Now().UnixNano()%36]
			continue
		}
		out[i] = base36Alphabet[idx.Int64()]
	}
	return string(out)
}
