package email

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/renewly/renewly/internal/app/service/reminder"
)

type template struct {
	subject func(info mailInfo) string
	body    func(info mailInfo) string
}

type mailInfo struct {
	UserName         string
	SubscriptionName string
	RenewDate        string
	Price            string
	PaymentMethod    string
}

// formatPrice renders "USD 15.99 (monthly)".
func formatPrice(snap *reminder.Snapshot) string {
	price := strconv.FormatFloat(snap.Price, 'f', -1, 64)
	return fmt.Sprintf("%s %s (%s)", snap.Currency, price, snap.Frequency)
}

func newMailInfo(snap *reminder.Snapshot) mailInfo {
	return mailInfo{
		UserName:         snap.UserName,
		SubscriptionName: snap.Name,
		RenewDate:        snap.RenewDate.Format("Jan 2, 2006"),
		Price:            formatPrice(snap),
		PaymentMethod:    snap.PaymentMethod,
	}
}

func detailsBlock(info mailInfo, background, accent string) string {
	border := ""
	if accent != "" {
		border = fmt.Sprintf(" border-left: 4px solid %s;", accent)
	}
	return fmt.Sprintf(`<div style="background: %s; padding: 15px; border-radius: 5px; margin: 20px 0;%s">
  <h3>Subscription Details:</h3>
  <p><strong>Plan:</strong> %s</p>
  <p><strong>Amount:</strong> %s</p>
  <p><strong>Renewal Date:</strong> %s</p>
  <p><strong>Payment Method:</strong> %s</p>
</div>`, background, border, info.SubscriptionName, info.Price, info.RenewDate, info.PaymentMethod)
}

func wrap(parts ...string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
%s
<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #ddd;">
  <p><small>This is an automated reminder from Renewly</small></p>
</div>
</div>`, strings.Join(parts, "\n"))
}

var templates = map[string]template{
	"7_days_before": {
		subject: func(i mailInfo) string {
			return fmt.Sprintf("Reminder: Your %s subscription renews in 7 days", i.SubscriptionName)
		},
		body: func(i mailInfo) string {
			return wrap(
				"<h2>Weekly Subscription Reminder</h2>",
				fmt.Sprintf("<p>Hello %s,</p>", i.UserName),
				fmt.Sprintf("<p>Your <strong>%s</strong> subscription will renew in <strong>7 days</strong>.</p>", i.SubscriptionName),
				detailsBlock(i, "#f9f9f9", ""),
				"<p>You have a week to review or update your subscription details.</p>",
			)
		},
	},
	"5_days_before": {
		subject: func(i mailInfo) string {
			return fmt.Sprintf("Reminder: Your %s subscription renews in 5 days", i.SubscriptionName)
		},
		body: func(i mailInfo) string {
			return wrap(
				"<h2>Subscription Renewal Reminder</h2>",
				fmt.Sprintf("<p>Hello %s,</p>", i.UserName),
				fmt.Sprintf("<p>Your <strong>%s</strong> subscription will renew in <strong>5 days</strong>.</p>", i.SubscriptionName),
				detailsBlock(i, "#f9f9f9", ""),
				"<p>If you need to make any changes, please visit your account settings.</p>",
			)
		},
	},
	"2_days_before": {
		subject: func(i mailInfo) string {
			return fmt.Sprintf("Final Reminder: Your %s subscription renews in 2 days", i.SubscriptionName)
		},
		body: func(i mailInfo) string {
			return wrap(
				`<h2 style="color: #ff6b35;">Final Renewal Reminder</h2>`,
				fmt.Sprintf("<p>Hello %s,</p>", i.UserName),
				fmt.Sprintf("<p>Your <strong>%s</strong> subscription will renew in <strong>2 days</strong>.</p>", i.SubscriptionName),
				detailsBlock(i, "#fff3cd", "#ffc107"),
				"<p>This is your final reminder before automatic renewal.</p>",
			)
		},
	},
	"1_days_before": {
		subject: func(i mailInfo) string {
			return fmt.Sprintf("Last Chance: Your %s subscription renews TOMORROW", i.SubscriptionName)
		},
		body: func(i mailInfo) string {
			return wrap(
				`<h2 style="color: #dc3545;">Renewal Happening Tomorrow!</h2>`,
				fmt.Sprintf("<p>Hello %s,</p>", i.UserName),
				fmt.Sprintf("<p>Your <strong>%s</strong> subscription will renew <strong>TOMORROW</strong>.</p>", i.SubscriptionName),
				detailsBlock(i, "#f8d7da", "#dc3545"),
				"<p>If you need to make changes, please do so today to avoid automatic charges.</p>",
			)
		},
	},
}
