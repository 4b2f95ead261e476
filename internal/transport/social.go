package transport

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lotpilot/lotpilot/internal/domain"
)

// FileSocialPublisher writes each post to logs/social/.
type FileSocialPublisher struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

// NewFileSocialPublisher creates a publisher writing under logDir/social.
func NewFileSocialPublisher(logDir string, log zerolog.Logger) *FileSocialPublisher {
	return &FileSocialPublisher{
		dir: filepath.Join(logDir, "social"),
		log: log.With().Str("client", "social_publisher").Logger(),
		now: time.Now,
	}
}

// Publish writes the post to disk and returns a receipt.
func (p *FileSocialPublisher) Publish(platform, content, vehicleVIN string) (*domain.PostReceipt, error) {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return nil, fmt.Errorf("create social directory: %w", err)
	}

	if platform == "" {
		platform = "unknown"
	}

	now := p.now()
	path := filepath.Join(p.dir, fmt.Sprintf("%s_%s.txt", platform, now.Format(fileTimestampLayout)))
	body := fmt.Sprintf("Platform: %s\nVehicle VIN: %s\nTimestamp: %s\n\n%s\n",
		platform, vehicleVIN, now.Format(time.RFC3339), content)

	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return nil, fmt.Errorf("write social post file: %w", err)
	}

	p.log.Info().Str("platform", platform).Str("path", path).Msg("Social post written")

	return &domain.PostReceipt{
		ID:        uuid.New().String(),
		Platform:  platform,
		Path:      path,
		Timestamp: now,
	}, nil
}
