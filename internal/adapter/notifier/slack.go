package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elchacal801/flame-fraud/internal/core/domain"
)

const postMessageURL = "https://slack.com/api/chat.postMessage"

// maxListedAlerts caps the high severity alerts listed in one message.
const maxListedAlerts = 10

type SlackNotifier struct {
	botToken    string
	channel     string
	mentionTeam string
	apiURL      string
	httpClient  *http.Client
}

func NewSlackNotifier(botToken, channel, mentionTeam string) *SlackNotifier {
	return &SlackNotifier{
		botToken:    botToken,
		channel:     channel,
		mentionTeam: mentionTeam,
		apiURL:      postMessageURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NotifyIngestion posts per-source totals and the run's high severity
// alerts.
func (s *SlackNotifier) NotifyIngestion(ctx context.Context, summary domain.IngestionSummary) error {
	high := 0
	for _, a := range summary.Alerts {
		if a.Severity == domain.SeverityHigh {
			high++
		}
	}

	payload := SlackMessage{
		Channel: s.channel,
		Blocks:  s.buildIngestionBlocks(summary),
		Text:    fmt.Sprintf("FLAME ingestion: %d alert(s), %d high severity", len(summary.Alerts), high),
	}

	return s.sendMessage(ctx, payload)
}

func (s *SlackNotifier) buildIngestionBlocks(summary domain.IngestionSummary) []SlackBlock {
	blocks := []SlackBlock{
		{
			Type: "header",
			Text: &SlackText{
				Type: "plain_text",
				Text: "Regulatory intelligence run",
			},
		},
	}

	fields := make([]SlackText, 0, len(summary.Sources))
	for _, st := range summary.Sources {
		fields = append(fields, SlackText{Type: "mrkdwn", Text: fmt.Sprintf("*%s*\n%d", st.Source, st.Alerts)})
	}
	// Slack rejects sections with more than 10 fields
	for len(fields) > 0 {
		n := min(10, len(fields))
		blocks = append(blocks, SlackBlock{Type: "section", Fields: fields[:n]})
		fields = fields[n:]
	}

	blocks = append(blocks, SlackBlock{Type: "divider"})

	listed := 0
	for _, a := range summary.Alerts {
		if a.Severity != domain.SeverityHigh {
			continue
		}
		if listed == maxListedAlerts {
			break
		}
		listed++

		text := fmt.Sprintf("*[%s]* %s", a.Source, a.Title)
		if a.URL != "" {
			text = fmt.Sprintf("*[%s]* <%s|%s>", a.Source, a.URL, a.Title)
		}
		if !a.Date.IsZero() {
			text += fmt.Sprintf("\n• Date: %s", a.Date)
		}
		if len(a.MappedTPIDs) > 0 {
			text += fmt.Sprintf("\n• Threat paths: %s", strings.Join(a.MappedTPIDs, ", "))
		}

		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: text},
		})
	}

	if listed == 0 {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{Type: "mrkdwn", Text: "_No high severity alerts in this run_"},
		})
	}

	if s.mentionTeam != "" && listed > 0 {
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackText{
				Type: "mrkdwn",
				Text: s.mentionTeam,
			},
		})
	}

	return blocks
}

func (s *SlackNotifier) sendMessage(ctx context.Context, msg SlackMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.botToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack API returned status %d", resp.StatusCode)
	}

	// chat.postMessage reports failures in the body with a 200
	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Slack response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("slack API error: %s", result.Error)
	}

	return nil
}

type SlackMessage struct {
	Channel string       `json:"channel"`
	Blocks  []SlackBlock `json:"blocks"`
	Text    string       `json:"text"` // Fallback text
}

type SlackBlock struct {
	Type     string      `json:"type"`
	Text     *SlackText  `json:"text,omitempty"`
	Fields   []SlackText `json:"fields,omitempty"`
	Elements []SlackText `json:"elements,omitempty"`
}

type SlackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
