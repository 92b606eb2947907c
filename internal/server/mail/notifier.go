package mail

import "context"

// Notifier turns account flow events into templated messages.
type Notifier struct {
	d *Dispatcher
}

func NewNotifier(d *Dispatcher) *Notifier {
	return &Notifier{d: d}
}

// SendConfirmation mails the email confirmation link. host is the public base
// URL of the API with a trailing slash.
func (n *Notifier) SendConfirmation(ctx context.Context, to, username, host, token string) {
	n.d.Dispatch(ctx, Message{
		To:       to,
		Subject:  "Confirm your email",
		Template: TemplateVerifyEmail,
		Data: map[string]any{
			"host":     host,
			"username": username,
			"token":    token,
		},
	})
}

// SendPasswordReset mails the link that applies a pending password change.
func (n *Notifier) SendPasswordReset(ctx context.Context, to, username, host, token string) {
	n.d.Dispatch(ctx, Message{
		To:       to,
		Subject:  "Important: Update your account information",
		Template: TemplateResetPassword,
		Data: map[string]any{
			"username":   username,
			"reset_link": ResetLink(host, token),
		},
	})
}

// ResetLink builds the password reset confirmation URL.
func ResetLink(host, token string) string {
	return host + "api/auth/confirm_reset_password/" + token
}
