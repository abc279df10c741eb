package mail

import (
	"fmt"
	"time"

	"github.com/careacademy/academy-backend/internal/model"
)

const dateFormat = "Mon 2 Jan 2006"

// Template names.
const (
	TmplEnrollmentRequestedAdmin = "enrollment_requested_admin"
	TmplEnrollmentEnrolled       = "enrollment_enrolled"
	TmplEnrollmentCancelled      = "enrollment_cancelled"
	TmplEnrollmentCompleted      = "enrollment_completed"
	TmplRefundUpdated            = "refund_updated"
	TmplContactReceivedAdmin     = "contact_received_admin"
	TmplContactReply             = "contact_reply"
	TmplIntakeReminder           = "intake_reminder"
)

// FormatCents renders an amount such as 123450 as "$1,234.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	dollars := fmt.Sprintf("%d", cents/100)
	for i := len(dollars) - 3; i > 0; i -= 3 {
		dollars = dollars[:i] + "," + dollars[i:]
	}
	return fmt.Sprintf("%s$%s.%02d", sign, dollars, cents%100)
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}

func enrollmentData(d *model.EnrollmentDetail) map[string]string {
	amount := d.CoursePrice
	if d.Payment != nil {
		amount = d.Payment.AmountCents
	}
	return map[string]string{
		"enrollment_id": d.ID.String(),
		"user_name":     d.UserName,
		"user_email":    d.UserEmail,
		"course_title":  d.CourseTitle,
		"start_date":    formatDate(d.IntakeStartDate),
		"end_date":      formatDate(d.IntakeEndDate),
		"location":      d.IntakeLocation,
		"amount":        FormatCents(amount),
		"note":          d.Note,
		"admin_note":    d.AdminNote,
	}
}

func student(d *model.EnrollmentDetail) []Address {
	return []Address{{Name: d.UserName, Email: d.UserEmail}}
}

// EnrollmentRequestedAdmin tells the admin mailbox about a new request.
func EnrollmentRequestedAdmin(to Address, d *model.EnrollmentDetail) Message {
	return Message{
		To:       []Address{to},
		Subject:  "New enrollment request: " + d.CourseTitle,
		Template: TmplEnrollmentRequestedAdmin,
		Data:     enrollmentData(d),
	}
}

// EnrollmentStatusChanged builds the student email for a transition result.
// ok is false for statuses that have no student email.
func EnrollmentStatusChanged(res *model.TransitionResult) (msg Message, ok bool) {
	d := &res.Enrollment
	data := enrollmentData(d)

	switch res.To {
	case model.EnrollmentEnrolled:
		return Message{
			To:       student(d),
			Subject:  "Your place in " + d.CourseTitle + " is confirmed",
			Template: TmplEnrollmentEnrolled,
			Data:     data,
		}, true
	case model.EnrollmentCancelled:
		data["refund_amount"] = ""
		if res.Refund != nil {
			data["refund_amount"] = FormatCents(res.Refund.AmountCents)
		}
		return Message{
			To:       student(d),
			Subject:  "Enrollment cancelled: " + d.CourseTitle,
			Template: TmplEnrollmentCancelled,
			Data:     data,
		}, true
	case model.EnrollmentCompleted:
		return Message{
			To:       student(d),
			Subject:  "Congratulations on completing " + d.CourseTitle,
			Template: TmplEnrollmentCompleted,
			Data:     data,
		}, true
	}
	return Message{}, false
}

// IntakeReminder reminds an enrolled student that their intake starts soon.
func IntakeReminder(d *model.EnrollmentDetail) Message {
	data := enrollmentData(d)
	data["payment_due"] = ""
	if d.Payment != nil && d.Payment.Status == model.PaymentPending {
		data["payment_due"] = "yes"
	}
	return Message{
		To:       student(d),
		Subject:  d.CourseTitle + " starts " + formatDate(d.IntakeStartDate),
		Template: TmplIntakeReminder,
		Data:     data,
	}
}

// RefundUpdated tells the student a refund was reviewed.
func RefundUpdated(r *model.RefundDetail) Message {
	return Message{
		To:       []Address{{Name: r.UserName, Email: r.UserEmail}},
		Subject:  "Refund " + string(r.Status) + ": " + r.CourseTitle,
		Template: TmplRefundUpdated,
		Data: map[string]string{
			"user_name":    r.UserName,
			"course_title": r.CourseTitle,
			"amount":       FormatCents(r.AmountCents),
			"status":       string(r.Status),
		},
	}
}

func contactData(m *model.ContactMessage) map[string]string {
	return map[string]string{
		"message_id": m.ID.String(),
		"name":       m.Name,
		"email":      m.Email,
		"phone":      m.Phone,
		"subject":    m.Subject,
		"message":    m.Message,
	}
}

// ContactReceivedAdmin forwards a contact form submission to the admin mailbox.
func ContactReceivedAdmin(to Address, m *model.ContactMessage) Message {
	return Message{
		To:       []Address{to},
		Subject:  "Contact: " + m.Subject,
		Template: TmplContactReceivedAdmin,
		Data:     contactData(m),
	}
}

// ContactReply sends an admin's answer back to the visitor.
func ContactReply(m *model.ContactMessage, reply string) Message {
	data := contactData(m)
	data["reply"] = reply
	return Message{
		To:       []Address{{Name: m.Name, Email: m.Email}},
		Subject:  "Re: " + m.Subject,
		Template: TmplContactReply,
		Data:     data,
	}
}
