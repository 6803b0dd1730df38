package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var verifyEmailTemplate = template.Must(template.New("verify").Parse(`<p>Dear {{.Name}}</p>
<p>Thank you for registering Binkeyit.</p>
<a href="{{.URL}}" style="padding: 10px 20px; background: #007BFF; color: white; text-decoration: none; border-radius: 5px;">
  Verify Email
</a>
`))

var forgotPasswordTemplate = template.Must(template.New("forgot").Parse(`<div>
  <p>Dear {{.Name}},</p>
  <p>You have requested a password reset. Please use the following OTP code to reset your password:</p>
  <div style="background:yellow; font-size:20px; padding:10px; display:inline-block;">
    <strong>{{.OTP}}</strong>
  </div>
  <p>This OTP is valid for {{.Validity}} only. Enter this OTP on the BINKEYIT website to proceed with resetting your password.</p>
  <br/>
  <p>Thanks,</p>
  <p>Binkeyit Team</p>
</div>
`))

// VerifyEmailMessage builds the account verification email.
func VerifyEmailMessage(to, name, url string) (Message, error) {
	var html bytes.Buffer
	if err := verifyEmailTemplate.Execute(&html, struct{ Name, URL string }{name, url}); err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Verify email from Binkeyit",
		HTML:    html.String(),
		Text:    fmt.Sprintf("Dear %s,\nThank you for registering Binkeyit. Verify your email: %s\n", name, url),
	}, nil
}

// ForgotPasswordMessage builds the password reset email carrying the OTP.
func ForgotPasswordMessage(to, name, otp string, validity time.Duration) (Message, error) {
	data := struct{ Name, OTP, Validity string }{name, otp, humanDuration(validity)}

	var html bytes.Buffer
	if err := forgotPasswordTemplate.Execute(&html, data); err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: "Forgot password from Binkeyit",
		HTML:    html.String(),
		Text:    fmt.Sprintf("Dear %s,\nYour password reset OTP is %s. It is valid for %s only.\n", name, otp, data.Validity),
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
