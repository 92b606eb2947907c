// Package mail renders and delivers the emails of the confirmation and
// password reset flows. Delivery runs in the background and never reports
// failures to the request that triggered it.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

// Template names.
const (
	TemplateVerifyEmail   = "verify_email.html"
	TemplateResetPassword = "reset_password.html"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Message is a templated email addressed to a single recipient.
type Message struct {
	ID       string
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render executes the named template with data.
func Render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
