package service

import (
	"fmt"

	"github.com/fairwayhq/fairway/internal/domain"
	"github.com/osteele/liquid"
)

// followupTemplate pairs a queue template id with its liquid sources
type followupTemplate struct {
	Subject  string
	HTMLBody string
	TextBody string
}

var followupTemplates = map[domain.EmailTemplate]followupTemplate{
	domain.EmailTemplateWelcome: {
		Subject:  "Welcome to {{ course_name }}!",
		HTMLBody: `<p>Hi {{ first_name | default: "there" }},</p><p>Thanks for playing {{ course_name }}. Your reward is waiting: show code <strong>{{ reward_code }}</strong> at the counter for {{ reward_description }}.</p><p>See you on the course!</p>`,
		TextBody: `Hi {{ first_name | default: "there" }}, thanks for playing {{ course_name }}. Show code {{ reward_code }} at the counter for {{ reward_description }}.`,
	},
	domain.EmailTemplateMilestone3: {
		Subject:  "That's 3 rounds at {{ course_name }} 🏌️",
		HTMLBody: `<p>Hi {{ first_name | default: "there" }},</p><p>You've played {{ course_name }} {{ visit_count }} times now. Regulars like you are exactly who our membership is built for. Want us to send over the details?</p>`,
		TextBody: `Hi {{ first_name | default: "there" }}, you've played {{ course_name }} {{ visit_count }} times now. Regulars like you are exactly who our membership is built for.`,
	},
	domain.EmailTemplateMilestone5: {
		Subject:  "5 rounds in — time to talk membership?",
		HTMLBody: `<p>Hi {{ first_name | default: "there" }},</p><p>Five visits to {{ course_name }}! At this pace a membership would already be paying for itself. Reply to this email and our membership director will reach out.</p>`,
		TextBody: `Hi {{ first_name | default: "there" }}, five visits to {{ course_name }}! At this pace a membership would already be paying for itself.`,
	},
}

var liquidEngine = liquid.NewEngine()

// renderFollowup renders one follow-up template with the customer's bindings
func renderFollowup(template domain.EmailTemplate, bindings map[string]interface{}) (subject, htmlBody, textBody string, err error) {
	tpl, ok := followupTemplates[template]
	if !ok {
		return "", "", "", fmt.Errorf("unknown follow-up template: %s", template)
	}

	subject, err = liquidEngine.ParseAndRenderString(tpl.Subject, bindings)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to render subject: %w", err)
	}
	htmlBody, err = liquidEngine.ParseAndRenderString(tpl.HTMLBody, bindings)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to render html body: %w", err)
	}
	textBody, err = liquidEngine.ParseAndRenderString(tpl.TextBody, bindings)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to render text body: %w", err)
	}
	return subject, htmlBody, textBody, nil
}

// planFollowups decides which follow-up emails a committed capture earns.
// Opted-out customers get nothing. New local customers get the welcome
// message; the third and fifth visit trigger membership milestone notes.
func planFollowups(course *domain.Course, customer *domain.Customer, isNew bool, rewardCode string, rewardDescription string) ([]*domain.EmailQueueEntry, error) {
	if customer.OptedOutOfEmail || !customer.HasEmail() {
		return nil, nil
	}

	var templates []domain.EmailTemplate
	isLocal := customer.IsLocal != nil && !customer.IsLocal.IsNull && customer.IsLocal.Bool
	if isNew && isLocal {
		templates = append(templates, domain.EmailTemplateWelcome)
	}
	switch customer.VisitCount {
	case 3:
		templates = append(templates, domain.EmailTemplateMilestone3)
	case 5:
		templates = append(templates, domain.EmailTemplateMilestone5)
	}
	if len(templates) == 0 {
		return nil, nil
	}

	firstName := ""
	if customer.FirstName != nil && !customer.FirstName.IsNull {
		firstName = customer.FirstName.String
	}
	bindings := map[string]interface{}{
		"course_name":        course.Name,
		"first_name":         firstName,
		"visit_count":        customer.VisitCount,
		"reward_code":        rewardCode,
		"reward_description": rewardDescription,
	}

	var entries []*domain.EmailQueueEntry
	for _, template := range templates {
		subject, htmlBody, textBody, err := renderFollowup(template, bindings)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &domain.EmailQueueEntry{
			CourseID:   customer.CourseID,
			CustomerID: customer.ID,
			Recipient:  customer.Email.String,
			Template:   template,
			Subject:    subject,
			HTMLBody:   htmlBody,
			TextBody:   &domain.NullableString{String: textBody},
		})
	}
	return entries, nil
}
