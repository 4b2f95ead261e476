// Package transport provides the outbound delivery collaborators. In this
// codebase both email and social delivery are stubbed to disk: each send
// writes a file under the log directory and returns a receipt. A production
// deployment swaps these for real SES/SendGrid and platform API clients
// behind the same interfaces.
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

const fileTimestampLayout = "20060102_150405"

// FileEmailTransport writes each outgoing email to logs/emails/.
type FileEmailTransport struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

// NewFileEmailTransport creates a transport writing under logDir/emails.
func NewFileEmailTransport(logDir string, log zerolog.Logger) *FileEmailTransport {
	return &FileEmailTransport{
		dir: filepath.Join(logDir, "emails"),
		log: log.With().Str("client", "email_transport").Logger(),
		now: time.Now,
	}
}

// Send writes the email to disk and returns a delivery receipt.
func (t *FileEmailTransport) Send(to, subject, body string) (*domain.EmailReceipt, error) {
	if err := os.MkdirAll(t.dir, 0755); err != nil {
		return nil, fmt.Errorf("create email directory: %w", err)
	}

	now := t.now()
	path := filepath.Join(t.dir, fmt.Sprintf("email_%s.txt", now.Format(fileTimestampLayout)))
	content := fmt.Sprintf("To: %s\nSubject: %s\nTimestamp: %s\n\n%s\n",
		to, subject, now.Format(time.RFC3339), body)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("write email file: %w", err)
	}

	t.log.Info().Str("to", to).Str("subject", subject).Str("path", path).Msg("Email written")

	return &domain.EmailReceipt{
		ID:        uuid.New().String(),
		To:        to,
		Subject:   subject,
		Sent:      true,
		Method:    "file",
		Timestamp: now,
	}, nil
}
