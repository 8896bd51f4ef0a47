package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lysyi3m/deal-comb/app/fingerprint"
	"github.com/lysyi3m/deal-comb/app/metrics"
)

const summaryDealLimit = 5

var _ Emitter = (*DiscordEmitter)(nil)

// DiscordEmitter posts color-coded embeds to one or more Discord
// webhooks.
type DiscordEmitter struct {
	webhooks   []string
	httpClient *http.Client
	minHot     float64
}

func NewDiscordEmitter(webhooks []string, minHot float64) *DiscordEmitter {
	return &DiscordEmitter{
		webhooks:   webhooks,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		minHot:     minHot,
	}
}

// Emit posts a single item embed to every configured webhook.
func (e *DiscordEmitter) Emit(ctx context.Context, item fingerprint.Item, color int) error {
	title := item.Title
	if item.HotScore >= e.minHot && item.HotScore > 0 {
		title = "🔥 " + title
	}

	embed := Embed{
		Title: title,
		URL:   item.URL,
		Color: color,
		Fields: []EmbedField{
			{Name: "Source", Value: item.SourceName, Inline: true},
		},
	}
	if item.Body != "" {
		embed.Description = item.Body
	}
	if item.HotScore > 0 {
		embed.Fields = append(embed.Fields, EmbedField{
			Name: "Discount", Value: fmt.Sprintf("%.0f%%", item.HotScore), Inline: true,
		})
	}

	return e.post(ctx, embed)
}

// EmitRunSummary posts the end-of-run digest: the freshest deals plus an
// error field, spoilered so the channel stays readable.
func (e *DiscordEmitter) EmitRunSummary(ctx context.Context, snap metrics.Snapshot, color int) error {
	embed := Embed{Color: color}

	if len(snap.FreshDeals) == 0 {
		embed.Title = "No fresh deals 🙅"
		embed.Description = fmt.Sprintf("Ran at %s but found no fresh deals.",
			snap.StartedAt.Format("2006-01-02 15:04 UTC"))
	} else {
		embed.Title = fmt.Sprintf("Fresh deals – %s", snap.StartedAt.Format("2006-01-02 15:04 UTC"))
		deals := snap.FreshDeals
		if len(deals) > summaryDealLimit {
			deals = deals[:summaryDealLimit]
		}
		for _, d := range deals {
			embed.Fields = append(embed.Fields, EmbedField{
				Name:  d.Title,
				Value: fmt.Sprintf("[%s] hot %.0f%%", d.Source, d.HotScore),
			})
		}
	}

	embed.Fields = append(embed.Fields, errorField(snap.Errors))

	return e.post(ctx, embed)
}

func errorField(errors map[string][]string) EmbedField {
	count := 0
	var details string
	for src, errs := range errors {
		for _, e := range errs {
			count++
			details += fmt.Sprintf("[%s] %s\n", src, e)
		}
	}

	if count == 0 {
		return EmbedField{Name: "Errors", Value: "_No errors_"}
	}
	return EmbedField{
		Name:  fmt.Sprintf("Errors (%d)", count),
		Value: "||\n" + details + "||",
	}
}

func (e *DiscordEmitter) post(ctx context.Context, embed Embed) error {
	payload, err := json.Marshal(webhookPayload{Embeds: []Embed{embed}})
	if err != nil {
		return fmt.Errorf("failed to marshal embed: %w", err)
	}

	for _, webhook := range e.webhooks {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to post webhook: %w", err)
		}
		resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
	}

	return nil
}
