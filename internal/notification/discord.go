package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/domain"
)

// DiscordService reports run outcomes to a Discord webhook. An empty
// webhook URL disables it silently.
type DiscordService struct {
	log        zerolog.Logger
	webhookURL string
	httpClient *http.Client
}

func NewDiscordService(log zerolog.Logger, webhookURL string) *DiscordService {
	return &DiscordService{
		log:        log.With().Str("module", "notification").Str("type", "discord").Logger(),
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

var _ domain.NotificationService = (*DiscordService)(nil)

// SendSuccess sends a run summary.
func (s *DiscordService) SendSuccess(ctx context.Context, stats domain.RunStats) error {
	if s.webhookURL == "" {
		return nil
	}

	embed := discordEmbed{
		Title:     "Scrape Run Completed",
		Color:     0x00ff00,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []discordField{
			{Name: "Completed", Value: fmt.Sprintf("%d", stats.Completed), Inline: true},
			{Name: "Failed", Value: fmt.Sprintf("%d", stats.Failed), Inline: true},
			{Name: "Pending at start", Value: fmt.Sprintf("%d of %d sources", stats.TotalPending, stats.TotalSources), Inline: false},
			{Name: "Movies", Value: fmt.Sprintf("%d", stats.Movies), Inline: true},
			{Name: "Series", Value: fmt.Sprintf("%d", stats.Series), Inline: true},
			{Name: "Anime", Value: fmt.Sprintf("%d", stats.Anime), Inline: true},
		},
	}

	return s.sendWebhook(ctx, discordWebhook{Embeds: []discordEmbed{embed}})
}

// SendError sends a run-failure notification.
func (s *DiscordService) SendError(ctx context.Context, runErr error) error {
	if s.webhookURL == "" {
		return nil
	}

	embed := discordEmbed{
		Title:       "Scrape Run Failed",
		Description: fmt.Sprintf("Run aborted with error:\n```%s```", runErr.Error()),
		Color:       0xff0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	return s.sendWebhook(ctx, discordWebhook{Embeds: []discordEmbed{embed}})
}

func (s *DiscordService) sendWebhook(ctx context.Context, payload discordWebhook) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.Wrap(err, "failed to create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send webhook request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	s.log.Debug().Msg("Discord notification sent successfully")
	return nil
}

type discordWebhook struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp,omitempty"`
	Fields      []discordField `json:"fields,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}
