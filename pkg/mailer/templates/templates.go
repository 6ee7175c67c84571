package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// Welcome is the template name for the post-registration email.
const Welcome = "welcome"

// WelcomeData carries the fields the welcome template renders.
type WelcomeData struct {
	Name    string `json:"Name"`
	Email   string `json:"Email"`
	AppName string `json:"AppName"`
}

// Subject returns the subject line for a template name.
func Subject(name string) string {
	switch name {
	case Welcome:
		return "Welcome to projboard"
	default:
		return "Notification"
	}
}

// RenderHTML renders the named template with data.
func RenderHTML(name string, data map[string]any) (string, error) {
	t, err := htmpl.ParseFS(FS, name+".tmpl")
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}

// RenderText builds the plain-text fallback body.
func RenderText(name string, data map[string]any) string {
	switch name {
	case Welcome:
		return fmt.Sprintf("Hi %v, your account is ready. Log in and post your first project.", data["Name"])
	default:
		return ""
	}
}
