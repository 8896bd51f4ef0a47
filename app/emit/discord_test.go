package emit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/deal-comb/app/fetch"
	"github.com/lysyi3m/deal-comb/app/fingerprint"
	"github.com/lysyi3m/deal-comb/app/metrics"
)

func captureWebhook(t *testing.T) (*httptest.Server, *[]webhookPayload) {
	t.Helper()

	var payloads []webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("Failed to decode webhook payload: %v", err)
		}
		payloads = append(payloads, p)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	return server, &payloads
}

func testItem(title, body string) fingerprint.Item {
	return fingerprint.Run(fetch.Candidate{
		SourceName: "Test Source",
		Title:      title,
		Body:       body,
		URL:        "https://example.com/deal",
	})
}

func TestEmitItem(t *testing.T) {
	server, payloads := captureWebhook(t)
	emitter := NewDiscordEmitter([]string{server.URL}, 70)

	err := emitter.Emit(context.Background(), testItem("80% off VPN annual plan", "Limited time"), 0x2ECC71)
	if err != nil {
		t.Fatal(err)
	}

	if len(*payloads) != 1 {
		t.Fatalf("Expected 1 webhook post, got %d", len(*payloads))
	}
	embed := (*payloads)[0].Embeds[0]
	if !strings.HasPrefix(embed.Title, "🔥 ") {
		t.Errorf("Expected hot prefix for item above the floor, got %q", embed.Title)
	}
	if embed.Color != 0x2ECC71 {
		t.Errorf("Unexpected embed color: %#x", embed.Color)
	}
	if embed.URL != "https://example.com/deal" {
		t.Errorf("Unexpected embed URL: %q", embed.URL)
	}
	if embed.Description != "Limited time" {
		t.Errorf("Unexpected description: %q", embed.Description)
	}

	var sourceField, discountField *EmbedField
	for i := range embed.Fields {
		switch embed.Fields[i].Name {
		case "Source":
			sourceField = &embed.Fields[i]
		case "Discount":
			discountField = &embed.Fields[i]
		}
	}
	if sourceField == nil || sourceField.Value != "Test Source" {
		t.Errorf("Expected source field, got %+v", embed.Fields)
	}
	if discountField == nil || discountField.Value != "80%" {
		t.Errorf("Expected discount field, got %+v", embed.Fields)
	}
}

func TestEmitItemBelowHotFloor(t *testing.T) {
	server, payloads := captureWebhook(t)
	emitter := NewDiscordEmitter([]string{server.URL}, 70)

	err := emitter.Emit(context.Background(), testItem("20% off socks", ""), 0)
	if err != nil {
		t.Fatal(err)
	}

	embed := (*payloads)[0].Embeds[0]
	if strings.HasPrefix(embed.Title, "🔥") {
		t.Errorf("Expected no hot prefix below the floor, got %q", embed.Title)
	}
}

func TestEmitFansOutToAllWebhooks(t *testing.T) {
	server, payloads := captureWebhook(t)
	emitter := NewDiscordEmitter([]string{server.URL, server.URL}, 70)

	if err := emitter.Emit(context.Background(), testItem("Deal", ""), 0); err != nil {
		t.Fatal(err)
	}
	if len(*payloads) != 2 {
		t.Errorf("Expected 2 webhook posts, got %d", len(*payloads))
	}
}

func TestEmitWebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	emitter := NewDiscordEmitter([]string{server.URL}, 70)
	err := emitter.Emit(context.Background(), testItem("Deal", ""), 0)
	if err == nil {
		t.Fatal("Expected error for webhook failure")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestEmitRunSummary(t *testing.T) {
	server, payloads := captureWebhook(t)
	emitter := NewDiscordEmitter([]string{server.URL}, 70)

	snap := metrics.Snapshot{
		StartedAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		FreshDeals: []metrics.FreshDeal{
			{Source: "Deals Feed", Title: "50% off VPN", HotScore: 50},
		},
		Errors: map[string][]string{
			"Flaky Feed": {"connection refused"},
		},
	}

	if err := emitter.EmitRunSummary(context.Background(), snap, 0x5865F2); err != nil {
		t.Fatal(err)
	}

	embed := (*payloads)[0].Embeds[0]
	if !strings.Contains(embed.Title, "Fresh deals") {
		t.Errorf("Unexpected summary title: %q", embed.Title)
	}

	last := embed.Fields[len(embed.Fields)-1]
	if last.Name != "Errors (1)" {
		t.Errorf("Expected error count in field name, got %q", last.Name)
	}
	if !strings.HasPrefix(last.Value, "||") || !strings.HasSuffix(last.Value, "||") {
		t.Errorf("Expected spoilered error details, got %q", last.Value)
	}
	if !strings.Contains(last.Value, "[Flaky Feed] connection refused") {
		t.Errorf("Expected error detail, got %q", last.Value)
	}
}

func TestEmitRunSummaryNoDeals(t *testing.T) {
	server, payloads := captureWebhook(t)
	emitter := NewDiscordEmitter([]string{server.URL}, 70)

	snap := metrics.Snapshot{
		StartedAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		Errors:    map[string][]string{},
	}

	if err := emitter.EmitRunSummary(context.Background(), snap, 0); err != nil {
		t.Fatal(err)
	}

	embed := (*payloads)[0].Embeds[0]
	if embed.Title != "No fresh deals 🙅" {
		t.Errorf("Unexpected title: %q", embed.Title)
	}
	last := embed.Fields[len(embed.Fields)-1]
	if last.Value != "_No errors_" {
		t.Errorf("Expected no-errors placeholder, got %q", last.Value)
	}
}

func TestEmitRunSummaryCapsDeals(t *testing.T) {
	server, payloads := captureWebhook(t)
	emitter := NewDiscordEmitter([]string{server.URL}, 70)

	snap := metrics.Snapshot{StartedAt: time.Now().UTC()}
	for i := 0; i < summaryDealLimit+3; i++ {
		snap.FreshDeals = append(snap.FreshDeals, metrics.FreshDeal{Source: "s", Title: "t"})
	}

	if err := emitter.EmitRunSummary(context.Background(), snap, 0); err != nil {
		t.Fatal(err)
	}

	embed := (*payloads)[0].Embeds[0]
	// Deal fields plus the trailing error field
	if len(embed.Fields) != summaryDealLimit+1 {
		t.Errorf("Expected %d fields, got %d", summaryDealLimit+1, len(embed.Fields))
	}
}
