package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/karlmoz79/busqueda-laptop/internal/config"
	"github.com/karlmoz79/busqueda-laptop/internal/models"
)

// InRange reports whether a price qualifies for an alert: present and within
// the closed [minPrice, threshold] band. The lower bound filters out
// accessories and spare parts that match the search terms.
func InRange(price *float64, threshold, minPrice float64) bool {
	return price != nil && *price >= minPrice && *price <= threshold
}

// Notifier sends consolidated price alerts over SMTP. Alerts already sent for
// a product URL within the dedup window are suppressed via the optional
// Deduper.
type Notifier struct {
	cfg    config.SMTPConfig
	dedup  *Deduper
	logger *slog.Logger
}

func New(cfg config.SMTPConfig, dedup *Deduper, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		dedup:  dedup,
		logger: logger.With("component", "notifier"),
	}
}

// Configured reports whether SMTP credentials are present. An unconfigured
// notifier is valid; SendConsolidatedAlert then only counts qualifying items.
func (n *Notifier) Configured() bool {
	return n.cfg.Sender != "" && n.cfg.Password != "" && n.cfg.Recipient != ""
}

// SendConsolidatedAlert emails one message covering every record whose price
// falls inside [minPrice, threshold], and returns how many records qualified.
// Records suppressed by the dedup window do not appear in the email but still
// count as qualifying.
func (n *Notifier) SendConsolidatedAlert(ctx context.Context, records []models.ProductRecord, threshold, minPrice float64) (int, error) {
	var qualifying []models.ProductRecord
	for _, rec := range records {
		if InRange(rec.PriceUSD, threshold, minPrice) {
			qualifying = append(qualifying, rec)
		}
	}
	if len(qualifying) == 0 {
		return 0, nil
	}

	fresh := qualifying
	if n.dedup != nil {
		fresh = nil
		for _, rec := range qualifying {
			first, err := n.dedup.FirstAlert(ctx, rec.URL)
			if err != nil {
				n.logger.Warn("dedup check failed, alerting anyway", "error", err)
				first = true
			}
			if first {
				fresh = append(fresh, rec)
			}
		}
	}

	if !n.Configured() {
		n.logger.Info("email not configured, skipping alert", "qualifying", len(qualifying))
		return len(qualifying), nil
	}
	if len(fresh) == 0 {
		n.logger.Info("all qualifying alerts deduplicated", "qualifying", len(qualifying))
		return len(qualifying), nil
	}

	if err := n.send(ctx, fresh, threshold); err != nil {
		return len(qualifying), fmt.Errorf("failed to send alert email: %w", err)
	}

	n.logger.Info("alert email sent", "recipient", n.cfg.Recipient, "products", len(fresh))
	return len(qualifying), nil
}

func (n *Notifier) send(ctx context.Context, records []models.ProductRecord, threshold float64) error {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.Sender); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(n.cfg.Recipient); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(fmt.Sprintf("Price alert: %d product(s) at or below $%.2f", len(records), threshold))
	msg.SetBodyString(mail.TypeTextPlain, n.body(records, threshold))

	client, err := mail.NewClient(n.cfg.Host,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Sender),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := client.DialAndSendWithContext(sendCtx, msg); err != nil {
		return fmt.Errorf("failed to deliver email: %w", err)
	}
	return nil
}

func (n *Notifier) body(records []models.ProductRecord, threshold float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The following products dropped to $%.2f or below:\n\n", threshold)
	for _, rec := range records {
		fmt.Fprintf(&b, "- %s\n", rec.Title)
		if rec.PriceUSD != nil {
			fmt.Fprintf(&b, "  Price: $%.2f\n", *rec.PriceUSD)
		}
		if rec.ShipsToColombia {
			b.WriteString("  Ships to Colombia\n")
		}
		fmt.Fprintf(&b, "  %s\n\n", rec.URL)
	}
	b.WriteString(fmt.Sprintf("Checked at %s\n", time.Now().Format(time.RFC1123)))
	return b.String()
}
