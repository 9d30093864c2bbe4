package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Service archives the raw XML payloads of customs exchanges. Archiving is
// best effort: a storage failure is logged and never fails the exchange that
// produced the payload.
type Service struct {
	driver StorageDriver
}

func NewService(driver StorageDriver) *Service {
	return &Service{driver: driver}
}

// StoreExchange writes one payload under <kind>/<ref>-<direction>-<uuid>.xml
// and returns the key. On failure the key is empty.
func (s *Service) StoreExchange(ctx context.Context, kind, ref, direction string, payload []byte) string {
	key := fmt.Sprintf("%s/%s-%s-%s.xml", kind, ref, direction, uuid.NewString())
	if err := s.driver.Save(ctx, key, bytes.NewReader(payload), "text/xml; charset=utf-8"); err != nil {
		slog.Error("Failed to archive exchange payload", "key", key, "error", err)
		return ""
	}
	return key
}

// Fetch streams an archived payload back.
func (s *Service) Fetch(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.driver.Get(ctx, key)
}
