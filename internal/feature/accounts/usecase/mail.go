package usecase

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/rs/zerolog/log"

	"blog_backend/internal/feature/accounts/domain/entity"
)

const (
	activationText = `Hello, {{.Username}}!
You have created an account on "{{.Site}}".
Activate it by following the link {{.Link}}.
If you think this is a mistake, just ignore this email.`

	activationHTML = `<p>Hello, {{.Username}}!</p>
<p>You have created an account on "{{.Site}}".</p>
<p>Activate it by following the link <a href="{{.Link}}">{{.Link}}</a>.</p>
<p>If you think this is a mistake, just ignore this email.</p>`

	resetText = `Your password reset link: {{.Link}}.
If you think this is a mistake, just ignore this email.`

	resetHTML = `<p>Your password reset link: <a href="{{.Link}}">{{.Link}}</a>.</p>
<p>If you think this is a mistake, just ignore this email.</p>`
)

var (
	activationTextTmpl = texttemplate.Must(texttemplate.New("activation").Parse(activationText))
	activationHTMLTmpl = htmltemplate.Must(htmltemplate.New("activation").Parse(activationHTML))
	resetTextTmpl      = texttemplate.Must(texttemplate.New("reset").Parse(resetText))
	resetHTMLTmpl      = htmltemplate.Must(htmltemplate.New("reset").Parse(resetHTML))
)

type mailData struct {
	Username string
	Site     string
	Link     string
}

// ActivationPath はトークンの有効化リンク（サイト内パス）を返します。
func ActivationPath(token string) string {
	return "/accounts/activate/" + token + "/"
}

// PasswordResetPath はトークンのリセットリンク（サイト内パス）を返します。
func PasswordResetPath(token string) string {
	return "/accounts/password-reset/" + token + "/"
}

// mailSender はアカウント関連のメールを組み立てて送信します。
// 送信失敗はログに記録するだけで、呼び出し元には返しません。
type mailSender struct {
	mailer   Mailer
	baseHost string
	site     string
}

func newMailSender(m Mailer, cfg Config) *mailSender {
	return &mailSender{
		mailer:   m,
		baseHost: strings.TrimRight(cfg.BaseHost, "/"),
		site:     cfg.SiteName,
	}
}

func (s *mailSender) sendActivation(ctx context.Context, user *entity.User, tok *entity.AuthToken) {
	data := mailData{Username: user.Username, Site: s.site, Link: s.baseHost + ActivationPath(tok.Token)}
	subject := `You have created an account on "` + s.site + `"`
	s.send(ctx, user, subject, data, activationTextTmpl, activationHTMLTmpl)
}

func (s *mailSender) sendPasswordReset(ctx context.Context, user *entity.User, tok *entity.AuthToken) {
	data := mailData{Username: user.Username, Site: s.site, Link: s.baseHost + PasswordResetPath(tok.Token)}
	subject := `Password reset requested for your account on "` + s.site + `"`
	s.send(ctx, user, subject, data, resetTextTmpl, resetHTMLTmpl)
}

func (s *mailSender) send(ctx context.Context, user *entity.User, subject string, data mailData,
	text *texttemplate.Template, html *htmltemplate.Template) {
	if user.Email == "" {
		log.Info().Uint("user_id", user.ID).Str("subject", subject).Msg("user has no email, mail not sent")
		return
	}
	if s.mailer == nil {
		log.Warn().Uint("user_id", user.ID).Str("subject", subject).Msg("mailer not configured, mail not sent")
		return
	}

	var body, htmlBody bytes.Buffer
	if err := text.Execute(&body, data); err != nil {
		log.Error().Err(err).Msg("failed to render mail body")
		return
	}
	if err := html.Execute(&htmlBody, data); err != nil {
		log.Error().Err(err).Msg("failed to render mail html body")
		return
	}

	if err := s.mailer.SendMail(ctx, user.Email, subject, body.String(), htmlBody.String()); err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Str("email", user.Email).Msg("failed to send mail")
		return
	}
	log.Info().Uint("user_id", user.ID).Str("subject", subject).Msg("mail sent")
}
