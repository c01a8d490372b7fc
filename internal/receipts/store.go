package receipts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cine-storefront/internal/config"
)

var ErrNotImage = errors.New("receipt must be an image")

// Store persists payment receipt uploads and returns a URL that admins can open.
type Store interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// New picks the backend named by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, publicBaseURL string) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, publicBaseURL+"/receipts")
	case "s3":
		return NewS3StoreFromConfig(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// DetectImageType sniffs the first bytes of an upload. The declared content type
// from the browser is ignored because it is trivially spoofed.
func DetectImageType(head []byte) (string, error) {
	ct := http.DetectContentType(head)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: got %s", ErrNotImage, ct)
	}
	return ct, nil
}
