package usecase

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"account-assistant/internal/domain"
	"account-assistant/internal/integrations/webhook"
)

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type AskOutput struct {
	Reply domain.ChatEntry
	// Err is the classified failure behind an error reply, nil on success.
	// It has already been surfaced to the user through Reply.
	Err error
}

// PendingAsk is a question whose user entry is already in the conversation
// and whose reply has not been requested yet.
type PendingAsk struct {
	User domain.ChatEntry

	session *Session
	account string
	date    string

	once sync.Once
	out  AskOutput
}

// Ask sends a question and waits for the reply entry. It is BeginAsk followed
// by Resolve.
func (s *Session) Ask(ctx context.Context, question string) (AskOutput, error) {
	p, err := s.BeginAsk(question)
	if err != nil {
		return AskOutput{}, err
	}
	return p.Resolve(ctx), nil
}

// BeginAsk appends the user entry and marks the session pending. Empty input
// or a question already in flight is rejected without touching the
// conversation.
func (s *Session) BeginAsk(question string) (*PendingAsk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, newError(ErrorInvalidInput, "empty_question", nil)
	}
	if utf8.RuneCountInString(question) > maxQuestionLength {
		return nil, newError(ErrorInvalidInput, "question_too_long", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return nil, newError(ErrorBusy, "request_pending", nil)
	}

	now := s.now()
	user := domain.ChatEntry{
		ID:        newUUID(),
		Text:      question,
		FromUser:  true,
		CreatedAt: now,
	}
	s.conversation.Append(user)
	s.pending = true

	return &PendingAsk{
		User:    user,
		session: s,
		account: s.accountID,
		date:    now.Format(time.DateOnly),
	}, nil
}

// Resolve performs the webhook call, appends exactly one reply entry and
// clears the pending flag. Calling it again returns the first result.
func (p *PendingAsk) Resolve(ctx context.Context) AskOutput {
	p.once.Do(func() {
		p.out = p.session.resolveAsk(ctx, p)
	})
	return p.out
}

func (s *Session) resolveAsk(ctx context.Context, p *PendingAsk) (out AskOutput) {
	defer func() {
		s.mu.Lock()
		s.conversation.Append(out.Reply)
		s.pending = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	answer, err := s.client.AskQuestion(ctx, webhook.AskRequest{
		Question:      p.User.Text,
		AccountNumber: p.account,
		SessionID:     p.account,
		Date:          p.date,
	})
	if err != nil {
		classified := classifyRequestError(err)
		s.logger.Warn("question failed",
			"account", p.account,
			"code", classified.Code,
			"reason", classified.Reason,
			"err", err,
		)
		reply := s.botEntry(errorEntryText(classified))
		reply.IsError = true
		return AskOutput{Reply: reply, Err: classified}
	}

	text := strings.TrimSpace(answer.Answer)
	fallback := text == ""
	if fallback {
		text = fallbackAnswerText
	}
	reply := s.botEntry(text)
	reply.RowCount = answer.DataRows
	s.logger.Info("question answered",
		"account", p.account,
		"latency_ms", s.now().Sub(start).Milliseconds(),
		"fallback", fallback,
	)
	return AskOutput{Reply: reply}
}

// classifyRequestError sorts a webhook failure into timeout, upstream or
// network.
func classifyRequestError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrorTimeout, "request_timeout", err)
	}
	if errors.Is(err, context.Canceled) {
		return newError(ErrorTimeout, "request_canceled", err)
	}
	if _, ok := upstreamStatusCode(err); ok {
		return newError(ErrorUpstream, "unexpected_status", err)
	}
	if errors.Is(err, webhook.ErrMalformedResponse) {
		return newError(ErrorUpstream, "malformed_response", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(ErrorTimeout, "transport_timeout", err)
	}
	return newError(ErrorNetwork, "transport_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
