// Package mail renders transactional emails from embedded templates and
// delivers them through SendGrid or the console.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"strings"
	texttmpl "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// Address is an email recipient.
type Address struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Message is a templated email. It is JSON encoded onto the mail queue, so
// Data only carries preformatted strings.
type Message struct {
	To       []Address         `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`

	TextContent string `json:"-"`
	HTMLContent string `json:"-"`
}

// HasRecipients reports whether the message has at least one addressee.
func (m *Message) HasRecipients() bool { return len(m.To) > 0 }

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type templatePair struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

// contextData is what every template receives.
type contextData struct {
	AppName         string
	FrontendBaseURL string
	Data            map[string]string
}

// Renderer fills messages from the embedded templates.
type Renderer struct {
	appName         string
	frontendBaseURL string
	templates       map[string]templatePair
}

// NewRenderer parses every template pair under templates/. Each name needs a
// .txt and a .gohtml file; both are rendered inside the matching _base file.
func NewRenderer(appName, frontendBaseURL string) (*Renderer, error) {
	r := &Renderer{
		appName:         appName,
		frontendBaseURL: frontendBaseURL,
		templates:       make(map[string]templatePair),
	}

	paths, err := fs.Glob(templateFS, "templates/*.txt")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".txt")
		if strings.HasPrefix(name, "_") {
			continue
		}

		text, err := texttmpl.ParseFS(templateFS, "templates/_base.txt", p)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		html, err := htmltmpl.ParseFS(templateFS, "templates/_base.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parse %s.gohtml: %w", name, err)
		}
		r.templates[name] = templatePair{
			text: text.Option("missingkey=error"),
			html: html.Option("missingkey=error"),
		}
	}
	return r, nil
}

// Has reports whether a template with this name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render fills msg.TextContent and msg.HTMLContent.
func (r *Renderer) Render(msg *Message) error {
	pair, ok := r.templates[msg.Template]
	if !ok {
		return fmt.Errorf("unknown email template %q", msg.Template)
	}
	data := contextData{AppName: r.appName, FrontendBaseURL: r.frontendBaseURL, Data: msg.Data}

	var text bytes.Buffer
	if err := pair.text.ExecuteTemplate(&text, "_base.txt", data); err != nil {
		return fmt.Errorf("render %s.txt: %w", msg.Template, err)
	}
	var html bytes.Buffer
	if err := pair.html.ExecuteTemplate(&html, "_base.gohtml", data); err != nil {
		return fmt.Errorf("render %s.gohtml: %w", msg.Template, err)
	}

	msg.TextContent = text.String()
	msg.HTMLContent = html.String()
	return nil
}
