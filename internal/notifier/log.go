package notifier

import (
	"log/slog"

	"github.com/amishk599/aisocjobs/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly discovered postings to the given logger as
// structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with company, title, score, and URL.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(postings []model.Posting) error {
	for _, p := range postings {
		args := []any{
			"company", p.Company,
			"title", p.Title,
			"location", p.Location,
			"score", p.RelevanceScore,
			"category", p.Category,
			"url", p.SourceURL,
		}
		if p.PostingDate != "" {
			args = append(args, "posted_at", p.PostingDate)
		}
		n.logger.Info("new posting", args...)
	}
	return nil
}
