package mailer

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

type emailTemplate struct {
	subject string
	text    string
	html    string
}

var templates = map[string]emailTemplate{
	TemplateWelcome: {
		subject: "Welcome to {{.AppName}}",
		text: "Hi {{.Fullname}},\n\n" +
			"your channel @{{.Username}} is ready. Upload your first video and say hello.\n\n" +
			"— the {{.AppName}} team\n",
		html: "<p>Hi {{.Fullname}},</p>" +
			"<p>your channel <strong>@{{.Username}}</strong> is ready. Upload your first video and say hello.</p>" +
			"<p>— the {{.AppName}} team</p>",
	},
	TemplatePasswordChanged: {
		subject: "Your {{.AppName}} password was changed",
		text: "Hi {{.Fullname}},\n\n" +
			"the password for @{{.Username}} was just changed. If this was not you, contact support immediately.\n",
		html: "<p>Hi {{.Fullname}},</p>" +
			"<p>the password for <strong>@{{.Username}}</strong> was just changed. " +
			"If this was not you, contact support immediately.</p>",
	},
}

// Render produces subject, text and html bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	t, ok := templates[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	subject, err = renderText(name+":subject", t.subject, data)
	if err != nil {
		return "", "", "", err
	}
	text, err = renderText(name+":text", t.text, data)
	if err != nil {
		return "", "", "", err
	}
	html, err = renderHTML(name+":html", t.html, data)
	if err != nil {
		return "", "", "", err
	}
	return subject, text, html, nil
}

func renderText(name, tpl string, data map[string]any) (string, error) {
	t, err := texttpl.New(name).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(name, tpl string, data map[string]any) (string, error) {
	t, err := htmpl.New(name).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
