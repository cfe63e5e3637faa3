package usecase

import (
	"errors"
	"fmt"
	"strings"

	"account-assistant/internal/domain"
)

const (
	greetingText = "Hello! I'm your Account Assistant. I can help you check your balance, " +
		"disconnection date, account summary, and report problems. What would you like to know?"
	clearedText        = "Chat cleared! How can I help you with your account today?"
	fallbackAnswerText = "Sorry, I couldn't find an answer to that question."

	timeoutText = "The request timed out. The server is taking too long to respond, please try again."
	networkText = "Unable to connect to the server. Please check your internet connection and try again."
	serverText  = "The server could not process your question right now. Please try again later."

	// ReportFailedMessage is shown in a blocking alert when a report cannot be sent.
	ReportFailedMessage = "Unable to submit your problem report. Please try again later."
)

// QuickAction is a one-tap shortcut offered at the start of a conversation.
type QuickAction struct {
	Title       string
	Query       string
	OpensReport bool
}

var quickActions = []QuickAction{
	{Title: "Balance", Query: "What is my current account balance?"},
	{Title: "Disconnection Date", Query: "When is my disconnection date?"},
	{Title: "Account Summary", Query: "Show me my account summary"},
	{Title: "Report Issue", OpensReport: true},
}

// errorEntryText maps a classified ask failure to the text of its error entry.
func errorEntryText(err error) string {
	var usecaseErr *Error
	if !errors.As(err, &usecaseErr) {
		return networkText
	}
	switch usecaseErr.Code {
	case ErrorTimeout:
		return timeoutText
	case ErrorUpstream:
		if status, ok := upstreamStatusCode(usecaseErr.Err); ok {
			return fmt.Sprintf("The server returned an error (status %d). Please try again later.", status)
		}
		return serverText
	default:
		return networkText
	}
}

func confirmationText(report domain.ProblemReport, ticketID, output string) string {
	if strings.TrimSpace(output) != "" {
		return "Account Status Alert:\n\n" + strings.TrimSpace(output)
	}
	return strings.Join([]string{
		"Problem Report Submitted:",
		"",
		"Type: " + report.Category.Label(),
		"Description: " + report.Description,
		"Account: " + report.AccountID,
		"Ticket ID: " + ticketID,
		"",
		"Our team will contact you within 24 hours.",
	}, "\n")
}

// ticketID derives a six digit ticket number from the submit time.
func ticketID(report domain.ProblemReport) string {
	return fmt.Sprintf("#%06d", report.SubmittedAt.UnixMilli()%1_000_000)
}
