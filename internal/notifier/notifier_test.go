package notifier

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karlmoz79/busqueda-laptop/internal/config"
	"github.com/karlmoz79/busqueda-laptop/internal/models"
)

func TestInRange(t *testing.T) {
	tests := []struct {
		name  string
		price *float64
		want  bool
	}{
		{name: "inside band", price: models.PriceOf(700), want: true},
		{name: "at ceiling", price: models.PriceOf(749.99), want: true},
		{name: "at floor", price: models.PriceOf(500), want: true},
		{name: "above ceiling", price: models.PriceOf(750), want: false},
		{name: "below floor", price: models.PriceOf(499.99), want: false},
		{name: "absent price", price: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InRange(tt.price, 749.99, 500))
		})
	}
}

func testNotifier(cfg config.SMTPConfig) *Notifier {
	return New(cfg, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestConfigured(t *testing.T) {
	assert.False(t, testNotifier(config.SMTPConfig{}).Configured())
	assert.False(t, testNotifier(config.SMTPConfig{Sender: "a@b.c"}).Configured())
	assert.True(t, testNotifier(config.SMTPConfig{
		Sender: "a@b.c", Password: "secret", Recipient: "d@e.f",
	}).Configured())
}

func TestSendConsolidatedAlertCountsWithoutSMTP(t *testing.T) {
	n := testNotifier(config.SMTPConfig{})

	records := []models.ProductRecord{
		{Title: "Lenovo ThinkBook 16 G6", PriceUSD: models.PriceOf(749.99), URL: "https://a"},
		{Title: "Lenovo ThinkBook 16 G7", PriceUSD: models.PriceOf(899.00), URL: "https://b"},
		{Title: "Lenovo ThinkBook sleeve", PriceUSD: models.PriceOf(25.00), URL: "https://c"},
		{Title: "Lenovo ThinkBook 16", PriceUSD: nil, URL: "https://d"},
	}

	sent, err := n.SendConsolidatedAlert(context.Background(), records, 749.99, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestSendConsolidatedAlertNoQualifying(t *testing.T) {
	n := testNotifier(config.SMTPConfig{
		Sender: "a@b.c", Password: "secret", Recipient: "d@e.f",
	})

	records := []models.ProductRecord{
		{Title: "Lenovo ThinkBook 16 G7", PriceUSD: models.PriceOf(899.00), URL: "https://b"},
	}

	// No qualifying record means no SMTP dial at all.
	sent, err := n.SendConsolidatedAlert(context.Background(), records, 749.99, 500)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestAlertBody(t *testing.T) {
	n := testNotifier(config.SMTPConfig{})

	records := []models.ProductRecord{
		{Title: "Lenovo ThinkBook 16 G6", PriceUSD: models.PriceOf(749.99), URL: "https://a", ShipsToColombia: true},
		{Title: "Lenovo ThinkBook 14", PriceUSD: models.PriceOf(650.00), URL: "https://b"},
	}

	body := n.body(records, 749.99)

	assert.Contains(t, body, "$749.99 or below")
	assert.Contains(t, body, "Lenovo ThinkBook 16 G6")
	assert.Contains(t, body, "Price: $749.99")
	assert.Contains(t, body, "Ships to Colombia")
	assert.Contains(t, body, "https://b")
}

func TestAlertKeyStable(t *testing.T) {
	assert.Equal(t, alertKey("https://a"), alertKey("https://a"))
	assert.NotEqual(t, alertKey("https://a"), alertKey("https://b"))
	assert.Contains(t, alertKey("https://a"), "alert:")
}
