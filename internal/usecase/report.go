package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"account-assistant/internal/domain"
	"account-assistant/internal/integrations/webhook"
)

type ReportInput struct {
	Category    domain.ProblemCategory
	Description string
}

type ReportOutput struct {
	Report       domain.ProblemReport
	TicketID     string
	Confirmation domain.ChatEntry
}

// SubmitReport sends a problem report for the current account. On success a
// single confirmation entry is appended. On failure nothing is appended and
// the returned *Error should be shown to the user as ReportFailedMessage.
func (s *Session) SubmitReport(ctx context.Context, in ReportInput) (ReportOutput, error) {
	if !in.Category.Valid() {
		return ReportOutput{}, newError(ErrorInvalidInput, "unknown_category", nil)
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return ReportOutput{}, newError(ErrorInvalidInput, "empty_description", nil)
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return ReportOutput{}, newError(ErrorInvalidInput, "description_too_long", nil)
	}

	s.mu.Lock()
	if s.reportPending {
		s.mu.Unlock()
		return ReportOutput{}, newError(ErrorBusy, "report_pending", nil)
	}
	s.reportPending = true
	report := domain.ProblemReport{
		Category:    in.Category,
		Description: description,
		AccountID:   s.accountID,
		SubmittedAt: s.now(),
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reportPending = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.client.SendReport(ctx, webhook.ReportRequest{
		Type:        string(report.Category),
		Description: report.Description,
		Account:     report.AccountID,
		Timestamp:   report.SubmittedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		SessionID:   report.AccountID,
	})
	if err != nil {
		classified := classifyRequestError(err)
		s.logger.Warn("problem report failed",
			"account", report.AccountID,
			"category", report.Category,
			"code", classified.Code,
			"reason", classified.Reason,
			"err", err,
		)
		return ReportOutput{}, classified
	}

	ticket := ticketID(report)
	confirmation := s.botEntry(confirmationText(report, ticket, reply.Output))

	s.mu.Lock()
	s.conversation.Append(confirmation)
	s.mu.Unlock()

	s.logger.Info("problem report submitted",
		"account", report.AccountID,
		"category", report.Category,
		"ticket", ticket,
		"status_alert", strings.TrimSpace(reply.Output) != "",
	)
	return ReportOutput{Report: report, TicketID: ticket, Confirmation: confirmation}, nil
}
