package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/springlegal/website/backend/internal/model/contact"
)

// Message is a rendered operator notice.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Sender delivers a message in a single attempt.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Addresses names the envelope of every notice.
type Addresses struct {
	From     string
	To       string
	SiteName string
}

// Dispatcher tells the operator about new submissions. Failures are logged and
// never returned; without a Sender it does nothing.
type Dispatcher struct {
	sender Sender
	addrs  Addresses
}

// NewDispatcher accepts a nil sender, which disables delivery.
func NewDispatcher(sender Sender, addrs Addresses) *Dispatcher {
	return &Dispatcher{sender: sender, addrs: addrs}
}

// Enabled reports whether a mail capability is attached.
func (d *Dispatcher) Enabled() bool {
	return d != nil && d.sender != nil
}

// Dispatch renders and sends the notice for sub.
func (d *Dispatcher) Dispatch(ctx context.Context, sub contact.Submission) {
	if !d.Enabled() {
		return
	}

	msg, err := Render(sub, d.addrs)
	if err != nil {
		log.Printf("[notify] failed to render notice: %v", err)
		return
	}

	if err := d.sender.Send(ctx, msg); err != nil {
		log.Printf("[notify] failed to send notice for %s: %v", sub.Email, err)
		return
	}
	log.Printf("[notify] notice sent to %s", d.addrs.To)
}

var noticeTemplate = template.Must(template.New("notice").Parse(`
<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Phone:</strong> {{.Phone}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
<hr>
<p><em>This message was sent from the {{.SiteName}} website contact form.</em></p>
`))

type noticeData struct {
	Name     string
	Email    string
	Phone    string
	Subject  string
	Lines    []string
	SiteName string
}

// Render builds the notice. Field values are HTML-escaped.
func Render(sub contact.Submission, addrs Addresses) (Message, error) {
	phone := "Not provided"
	if sub.Phone != nil && *sub.Phone != "" {
		phone = *sub.Phone
	}

	data := noticeData{
		Name:     sub.Name,
		Email:    sub.Email,
		Phone:    phone,
		Subject:  sub.Subject,
		Lines:    strings.Split(strings.ReplaceAll(sub.Message, "\r\n", "\n"), "\n"),
		SiteName: addrs.SiteName,
	}

	var buf bytes.Buffer
	if err := noticeTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("execute notice template: %w", err)
	}

	return Message{
		From:    addrs.From,
		To:      addrs.To,
		ReplyTo: sub.Email,
		Subject: "New Contact Form Submission: " + sub.Subject,
		HTML:    buf.String(),
	}, nil
}
