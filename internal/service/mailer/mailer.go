package mailer

import (
	"MenuHub/entity"
	"MenuHub/internal/config"
	"MenuHub/internal/lib/sl"
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type message struct {
	subject string
	title   string
	intro   string
	button  string
}

var messages = map[string]message{
	entity.EmailKindReset: {
		subject: "Redefinição de senha",
		title:   "Redefinir sua senha",
		intro:   "Recebemos um pedido para redefinir a senha da sua conta. Se não foi você, ignore este e-mail.",
		button:  "Criar nova senha",
	},
	entity.EmailKindConfirmation: {
		subject: "Confirme seu e-mail",
		title:   "Confirme seu cadastro",
		intro:   "Falta pouco! Confirme seu endereço de e-mail para acessar o painel.",
		button:  "Confirmar e-mail",
	},
}

var body = template.Must(template.New("email").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<h2>{{.Title}}</h2>
<p>{{.Intro}}</p>
<p><a href="{{.Link}}" style="background:#e4572e;color:#fff;padding:12px 20px;border-radius:6px;text-decoration:none">{{.Button}}</a></p>
<p style="font-size:12px;color:#777">O link expira em breve e só pode ser usado uma vez.</p>
</body></html>`))

// Mailer delivers transactional auth emails through Resend.
type Mailer struct {
	client *resend.Client
	from   string
	log    *slog.Logger
}

func New(conf *config.Config, logger *slog.Logger) *Mailer {
	if conf.Resend.ApiKey == "" {
		return nil
	}
	return &Mailer{
		client: resend.NewClient(conf.Resend.ApiKey),
		from:   conf.Resend.From,
		log:    logger.With(sl.Module("mailer")),
	}
}

func (m *Mailer) SendLink(ctx context.Context, kind, to, link string) error {
	msg, ok := messages[kind]
	if !ok {
		return fmt.Errorf("unknown email kind %q", kind)
	}

	var html bytes.Buffer
	err := body.Execute(&html, struct {
		Title, Intro, Button string
		Link                 template.URL
	}{msg.title, msg.intro, msg.button, template.URL(link)})
	if err != nil {
		return fmt.Errorf("render %s email: %w", kind, err)
	}

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: msg.subject,
		Html:    html.String(),
		Tags:    []resend.Tag{{Name: "kind", Value: kind}},
	})
	if err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	m.log.With(
		slog.String("kind", kind),
		slog.String("id", sent.Id),
	).Debug("email sent")
	return nil
}
