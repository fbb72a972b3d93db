package email

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/renewly/renewly/internal/app/service/reminder"
	"github.com/renewly/renewly/pkg/config"
	"github.com/renewly/renewly/pkg/logctx"
)

// Notifier sends reminder emails over SMTP. It satisfies reminder.Notifier;
// failures are returned to the engine, which retries the step under its
// checkpoint guard.
type Notifier struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.SugaredLogger
}

func NewNotifier(cfg *config.Config, log *zap.SugaredLogger) *Notifier {
	d := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return &Notifier{dialer: d, from: cfg.SMTP.From, log: log}
}

func (n *Notifier) Send(ctx context.Context, to string, reminderType string, snap *reminder.Snapshot) error {
	if to == "" {
		return fmt.Errorf("recipient address is empty")
	}
	tpl, ok := templates[reminderType]
	if !ok {
		return fmt.Errorf("no template for reminder type %q", reminderType)
	}

	info := newMailInfo(snap)

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", tpl.subject(info))
	m.SetBody("text/html", tpl.body(info))

	if err := n.dialer.DialAndSend(m); err != nil {
		logctx.FromCtx(ctx, n.log).Errorw("failed to send reminder email",
			"to", to, "type", reminderType, "err", err)
		return fmt.Errorf("send reminder email: %w", err)
	}

	logctx.FromCtx(ctx, n.log).Infow("reminder email sent", "to", to, "type", reminderType)
	return nil
}

var Module = fx.Options(
	fx.Provide(
		NewNotifier,
		func(n *Notifier) reminder.Notifier { return n },
	),
)
