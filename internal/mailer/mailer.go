package mailer

import (
	"bytes"
	"embed"
	"html/template"
)

const (
	FromName                  = "Storefront"
	maxRetries                = 3
	ContactSubmissionTemplate = "contact_submission.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	// Send renders templateFile with data and delivers it to email. It returns
	// the number of delivery attempts made.
	Send(templateFile, username, email string, data any) (int, error)
}

// Render executes the "subject" and "body" blocks of an embedded template.
func Render(templateFile string, data any) (subject, body string, err error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}

	var s bytes.Buffer
	if err := tmpl.ExecuteTemplate(&s, "subject", data); err != nil {
		return "", "", err
	}

	var b bytes.Buffer
	if err := tmpl.ExecuteTemplate(&b, "body", data); err != nil {
		return "", "", err
	}

	return s.String(), b.String(), nil
}

// ContactSubmission is the data rendered into contact_submission.tmpl.
type ContactSubmission struct {
	Name    string
	Email   string
	Phone   string
	Message string
}
