// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package notifications

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

const (
	TemplateLicenseSuspended   = "license_suspended"
	TemplateLicenseReactivated = "license_reactivated"
	TemplateLicenseExpiring    = "license_expiring"
	TemplateTokenLink          = "token_link"
	TemplateEnrollmentNextStep = "enrollment_next_step"
	TemplateWelcome            = "welcome"
)

var ErrUnknownTemplate = errors.New("unknown notification template")

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(key, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(key + ".subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(key + ".body").Option("missingkey=zero").Parse(body)),
	}
}

var templates = map[string]messageTemplate{
	TemplateLicenseSuspended: mustTemplate(TemplateLicenseSuspended,
		"Your organization's access has been paused",
		`Hello,

Access for {{.TenantName}} has been paused{{if .Reason}} ({{.Reason}}){{end}}.
Please update your billing details to restore access for your team.
`),
	TemplateLicenseReactivated: mustTemplate(TemplateLicenseReactivated,
		"Your organization's access has been restored",
		`Hello,

Access for {{.TenantName}} is active again. No further action is needed.
`),
	TemplateLicenseExpiring: mustTemplate(TemplateLicenseExpiring,
		"Payment issue on your subscription",
		`Hello,

We could not process the latest payment for {{.TenantName}}.
Access stays open until {{.GraceEndsAt}}, please update your payment method before then.
`),
	TemplateTokenLink: mustTemplate(TemplateTokenLink,
		"{{if .Subject}}{{.Subject}}{{else}}Your secure link{{end}}",
		`Hello,

Use the link below to continue. It expires on {{.ExpiresAt}}{{if .MaxUses}} and can be used {{.MaxUses}} time(s){{end}}.

{{.URL}}
`),
	TemplateEnrollmentNextStep: mustTemplate(TemplateEnrollmentNextStep,
		"Next step: {{.Label}}",
		`Hello,

Your next step is: {{.Label}}.
{{.Description}}

{{.URL}}
`),
	TemplateWelcome: mustTemplate(TemplateWelcome,
		"Welcome{{if .Name}}, {{.Name}}{{end}}",
		`Hello{{if .Name}} {{.Name}}{{end}},

Your account is ready. Sign in to get started.
`),
}

func KnownTemplate(key string) bool {
	_, ok := templates[key]
	return ok
}

// Render executes the subject and body templates of key against data.
func Render(key string, data map[string]any) (string, string, error) {
	t, ok := templates[key]
	if !ok {
		return "", "", ErrUnknownTemplate
	}

	var subject, body bytes.Buffer

	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s subject: %w", key, err)
	}
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", key, err)
	}

	// header injection guard, subjects are single line
	return strings.Join(strings.Fields(subject.String()), " "), body.String(), nil
}
