package mailer

import "go.uber.org/zap"

// Discard renders messages and logs them instead of sending. It is used when
// no SMTP host is configured.
type Discard struct {
	Logger *zap.SugaredLogger
}

func (d Discard) Send(templateFile, username, email string, data any) (int, error) {
	subject, _, err := Render(templateFile, data)
	if err != nil {
		return 0, err
	}
	if d.Logger != nil {
		d.Logger.Infow("mail not sent, smtp disabled", "to", email, "name", username, "subject", subject)
	}
	return 1, nil
}
