package email

import (
	"bytes"
	"embed"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFiles embed.FS

var textTemplateList *texttemplate.Template
var htmlTemplateList *htmltemplate.Template

func init() {
	textTemplateList = texttemplate.New("text")
	_, err := textTemplateList.ParseFS(templateFiles, "templates/*.text.plain")
	if err != nil {
		panic("can't read text templates: " + err.Error())
	}

	htmlTemplateList = htmltemplate.New("text")
	_, err = htmlTemplateList.ParseFS(templateFiles, "templates/*.text.html")
	if err != nil {
		panic("can't read html templates: " + err.Error())
	}
}

type EmailTemplate string

const (
	EmailTemplatePasswordReset EmailTemplate = "password-reset"
)

var templateSubjects = map[EmailTemplate]string{
	EmailTemplatePasswordReset: "Recuperar Contraseña",
}

type PasswordResetData struct {
	Username string
	Link     string
}

// Render builds a message addressed to toAddress from the plain text and
// HTML versions of template.
func Render(template EmailTemplate, toName, toAddress string, data any) (Message, error) {
	msg := Message{
		ToName:    toName,
		ToAddress: toAddress,
		Subject:   templateSubjects[template],
	}

	var plain bytes.Buffer
	if err := textTemplateList.ExecuteTemplate(&plain, string(template)+".text.plain", data); err != nil {
		return msg, err
	}
	msg.PlainBody = plain.Bytes()

	var html bytes.Buffer
	if err := htmlTemplateList.ExecuteTemplate(&html, string(template)+".text.html", data); err != nil {
		return msg, err
	}
	msg.HTMLBody = html.Bytes()

	return msg, nil
}
