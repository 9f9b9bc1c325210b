// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// WelcomeEmailData holds data for the provider welcome email.
type WelcomeEmailData struct {
	SiteName     string
	ProviderName string
	ProfileURL   string
}

// BuildWelcomeEmail creates the email sent when a user's provider
// profile is first created.
func BuildWelcomeEmail(data WelcomeEmailData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Welcome to %s", data.SiteName),
		TextBody: buildWelcomeText(data),
		HTMLBody: buildWelcomeHTML(data),
	}
}

func buildWelcomeText(data WelcomeEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hi %s,\n\n", data.ProviderName))
	buf.WriteString(fmt.Sprintf("Your provider profile on %s is live.\n\n", data.SiteName))
	buf.WriteString("Finish setting it up by adding your services and a photo:\n")
	buf.WriteString(data.ProfileURL + "\n")
	return buf.String()
}

func buildWelcomeHTML(data WelcomeEmailData) string {
	tmpl := template.Must(template.New("welcome").Parse(welcomeHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const welcomeHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Welcome</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #0f766e;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #111827;">Hi {{.ProviderName}},</p>
              <p style="margin: 0 0 16px; font-size: 16px; color: #111827;">Your provider profile is live. Customers can now find you in the directory.</p>
              <p style="margin: 0; text-align: center;">
                <a href="{{.ProfileURL}}" style="display: inline-block; padding: 12px 24px; background-color: #0f766e; color: #ffffff; text-decoration: none; border-radius: 6px; font-weight: 600;">Finish your profile</a>
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
