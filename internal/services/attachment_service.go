package services

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"reportdesk/internal/observability"
	contextutils "reportdesk/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// attachmentTimestampLayout prefixes stored attachment filenames. Second
// granularity means a same-name upload within the same second overwrites the
// earlier file; documented limitation.
const attachmentTimestampLayout = "20060102-150405"

// AttachmentService writes uploaded files into the local uploads directory.
// It never deletes; a stored path is a reference, not an owned resource.
type AttachmentService struct {
	dir    string
	logger *observability.Logger
}

// NewAttachmentService creates a new AttachmentService storing files under dir.
func NewAttachmentService(dir string, logger *observability.Logger) *AttachmentService {
	if dir == "" {
		panic("NewAttachmentService: dir is empty")
	}
	if logger == nil {
		panic("NewAttachmentService: logger is nil")
	}
	return &AttachmentService{dir: dir, logger: logger}
}

// Save writes the attachment bytes and returns the stored path. Returns an
// empty path when no bytes were supplied; no file is created in that case.
func (s *AttachmentService) Save(ctx context.Context, originalName string, data []byte) (result0 string, err error) {
	ctx, span := observability.TraceAttachmentFunction(ctx, "save",
		observability.AttributeAttachmentName(originalName),
		attribute.Int("attachment.size_bytes", len(data)),
	)
	defer observability.FinishSpan(span, &err)

	if len(data) == 0 {
		return "", nil
	}

	if mkdirErr := os.MkdirAll(s.dir, 0o755); mkdirErr != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrAttachmentWrite, "failed to create uploads directory %s: %v", s.dir, mkdirErr)
	}

	filename := time.Now().Format(attachmentTimestampLayout) + "_" + contextutils.SanitizeFilename(originalName)
	path := filepath.Join(s.dir, filename)

	if writeErr := os.WriteFile(path, data, 0o644); writeErr != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrAttachmentWrite, "failed to write attachment %s: %v", filename, writeErr)
	}

	s.logger.Info(ctx, "Attachment saved", map[string]interface{}{
		"path":       path,
		"size_bytes": len(data),
	})
	return path, nil
}
