package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"verba/internal/domain"
)

// Upload is one audio clip submitted through the form or the CLI.
type Upload struct {
	Filename string
	Body     io.Reader
}

type ProfileInput struct {
	Name  string
	Title string
	Email string
	Phone string
}

// Authorizer obtains a provider credential, e.g. through an interactive login.
type Authorizer func(ctx context.Context) (*oauth2.Token, error)

// SendRequest carries the recipient, subject and draft fields of the send form.
type SendRequest struct {
	Labels  []string
	Custom  string
	Subject string
	Draft   string
}

// Assistant drives the profile -> transcript -> draft -> sent flow for a session.
type Assistant struct {
	stager      AudioStager
	stt         SpeechToText
	drafter     Drafter
	mail        MailProvider
	contacts    []domain.Contact
	includeSelf bool
	notifier    Notifier
	logger      *slog.Logger
	now         func() time.Time
}

func NewAssistant(
	stager AudioStager,
	stt SpeechToText,
	drafter Drafter,
	mail MailProvider,
	contacts *domain.ContactTable,
	includeSelf bool,
	notifier Notifier,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		stager:      stager,
		stt:         stt,
		drafter:     drafter,
		mail:        mail,
		contacts:    contacts.Contacts(),
		includeSelf: includeSelf,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// ContactTable returns the directory for a session. With includeSelf the
// Myself label precedes the configured contacts and points at the profile email.
func (a *Assistant) ContactTable(p domain.Profile) *domain.ContactTable {
	contacts := a.contacts
	if a.includeSelf && p.Email != "" {
		contacts = append([]domain.Contact{{Label: domain.SelfLabel, Email: p.Email}}, a.contacts...)
	}
	return domain.NewContactTable(contacts)
}

func (a *Assistant) MailProviderName() string {
	return a.mail.Name()
}

func (a *Assistant) SaveProfile(sess *Session, in ProfileInput) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.profile != nil {
		return validationError("profile already set")
	}

	p, ok := domain.NewProfile(in.Name, in.Title, in.Email, in.Phone)
	if !ok {
		return validationError("name and email are required")
	}

	sess.profile = &p
	a.logger.Info("profile saved", "session", sess.ID, "state", sess.state())
	return nil
}

// Process stages the clip, transcribes it and drafts the body with the
// signature appended. On failure the session keeps its previous contents.
func (a *Assistant) Process(ctx context.Context, sess *Session, up Upload) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.profile == nil {
		return validationError("profile required")
	}
	if up.Body == nil || strings.TrimSpace(up.Filename) == "" {
		return validationError("audio file required")
	}

	ctx, cancel := sess.bind(ctx)
	defer cancel()

	path, err := a.stager.Stage(sess.ID, up.Filename, up.Body)
	if err != nil {
		return &ProcessingError{Step: "saving audio", Err: err}
	}
	a.logger.Info("audio staged", "session", sess.ID, "path", path)

	transcript, err := a.stt.Transcribe(ctx, path)
	if err != nil {
		return &ProcessingError{Step: "transcribing", Err: err}
	}
	a.logger.Info("transcribed", "session", sess.ID, "chars", len(transcript))

	body, err := a.drafter.Draft(ctx, transcript)
	if err != nil {
		return &ProcessingError{Step: "drafting", Err: err}
	}

	draft := AppendSignature(body, *sess.profile)
	sess.transcript = &transcript
	sess.draft = &draft
	sess.sent = nil
	sess.pending = nil

	a.logger.Info("draft ready", "session", sess.ID, "state", sess.state())
	return nil
}

// EditDraft stores the user's edits to the draft text area.
func (a *Assistant) EditDraft(sess *Session, body string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.draft == nil {
		return validationError("no draft to edit")
	}
	sess.draft = &body
	sess.sent = nil
	return nil
}

// ImportDraft sets a draft written outside the voice flow, such as a
// body file given to the CLI. No transcript is recorded.
func (a *Assistant) ImportDraft(sess *Session, body string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.profile == nil {
		return validationError("profile required")
	}
	sess.transcript = nil
	sess.draft = &body
	sess.sent = nil
	sess.pending = nil
	return nil
}

// prepare validates the send form and builds the message. Draft edits in
// req are kept even when validation fails. Caller holds sess.mu.
func (a *Assistant) prepare(sess *Session, req SendRequest) (*domain.Message, error) {
	if sess.profile == nil {
		return nil, validationError("profile required")
	}
	if sess.draft == nil {
		return nil, validationError("no draft to send")
	}
	draft := req.Draft
	sess.draft = &draft

	recipients := ResolveRecipients(a.ContactTable(*sess.profile), req.Labels, req.Custom)
	subject := strings.TrimSpace(req.Subject)

	if len(recipients) == 0 || subject == "" || strings.TrimSpace(draft) == "" {
		return nil, validationError("fill out all fields before sending")
	}

	return &domain.Message{
		From:    sess.profile.Email,
		To:      recipients,
		Subject: subject,
		Body:    draft,
	}, nil
}

// BeginSend validates the form. When the provider needs an interactive
// login the message is held on the session and the consent URL returned;
// otherwise it is sent immediately and authURL is empty.
func (a *Assistant) BeginSend(ctx context.Context, sess *Session, req SendRequest, state string) (string, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	msg, err := a.prepare(sess, req)
	if err != nil {
		return "", err
	}

	if authURL := a.mail.AuthURL(state); authURL != "" {
		sess.pending = &pendingSend{state: state, msg: *msg}
		a.logger.Info("send awaiting authorization", "session", sess.ID, "provider", a.mail.Name())
		return authURL, nil
	}

	return "", a.deliver(ctx, sess, nil, msg)
}

// CompleteSend finishes a send held by BeginSend once the provider
// redirects back with an authorization code.
func (a *Assistant) CompleteSend(ctx context.Context, sess *Session, state, code string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	pending := sess.pending
	if pending == nil {
		return validationError("no send awaiting authorization")
	}
	if state == "" || state != pending.state {
		sess.pending = nil
		return &SendError{Provider: a.mail.Name(), Err: fmt.Errorf("authorization state mismatch")}
	}
	sess.pending = nil

	ctx, cancel := sess.bind(ctx)
	defer cancel()

	tok, err := a.mail.Exchange(ctx, code)
	if err != nil {
		return &SendError{Provider: a.mail.Name(), Err: fmt.Errorf("authorizing: %w", err)}
	}

	return a.deliver(ctx, sess, tok, &pending.msg)
}

// CancelSend drops a send held for authorization, e.g. when the user
// denies consent. The draft is kept.
func (a *Assistant) CancelSend(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.pending != nil {
		sess.pending = nil
		a.logger.Info("send cancelled", "session", sess.ID)
	}
}

// Send validates the form and submits it. authorize, when non-nil, runs
// only after validation succeeds.
func (a *Assistant) Send(ctx context.Context, sess *Session, req SendRequest, authorize Authorizer) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	msg, err := a.prepare(sess, req)
	if err != nil {
		return err
	}

	var tok *oauth2.Token
	if authorize != nil {
		ctx, cancel := sess.bind(ctx)
		defer cancel()

		tok, err = authorize(ctx)
		if err != nil {
			return &SendError{Provider: a.mail.Name(), Err: fmt.Errorf("authorizing: %w", err)}
		}
	}
	return a.deliver(ctx, sess, tok, msg)
}

// deliver submits msg. Caller holds sess.mu.
func (a *Assistant) deliver(ctx context.Context, sess *Session, tok *oauth2.Token, msg *domain.Message) error {
	ctx, cancel := sess.bind(ctx)
	defer cancel()

	id, err := a.mail.Send(ctx, tok, msg)
	if err != nil {
		a.logger.Error("sending email", "session", sess.ID, "provider", a.mail.Name(), "error", err)
		return &SendError{Provider: a.mail.Name(), Err: err}
	}

	sess.sent = &SentResult{
		MessageID:  id,
		Recipients: msg.To,
		Subject:    msg.Subject,
		At:         a.now(),
	}
	a.logger.Info("email sent",
		"session", sess.ID,
		"provider", a.mail.Name(),
		"message_id", id,
		"recipients", len(msg.To),
	)

	note := fmt.Sprintf("Email %q sent to %s", msg.Subject, strings.Join(msg.To, ", "))
	if err := a.notifier.Notify(ctx, note); err != nil {
		a.logger.Error("notifying result", "error", err)
	}

	return nil
}

// Discard drops the current note but keeps the profile.
func (a *Assistant) Discard(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.clearWork()
	if err := a.stager.Remove(sess.ID); err != nil {
		a.logger.Warn("removing staged audio", "session", sess.ID, "error", err)
	}
	a.logger.Info("note discarded", "session", sess.ID, "state", sess.state())
}

// Reset clears all session state, profile included.
func (a *Assistant) Reset(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.clearWork()
	sess.profile = nil
	if err := a.stager.Remove(sess.ID); err != nil {
		a.logger.Warn("removing staged audio", "session", sess.ID, "error", err)
	}
	a.logger.Info("session reset", "session", sess.ID, "state", sess.state())
}
