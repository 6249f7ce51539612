package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"verba/internal/application"
	"verba/internal/infra/audio"
)

type flash struct {
	Kind string // "success" or "error"
	Text string
}

// sendForm echoes the send fields back when the form is re-rendered.
type sendForm struct {
	Selected map[string]bool
	Custom   string
	Subject  string
}

type pageData struct {
	View     application.View
	Labels   []string
	Provider string
	Flash    *flash
	Form     sendForm
}

func (p pageData) Is(state string) bool {
	return p.View.State.String() == state
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, f *flash, form sendForm) {
	sess := sessionFrom(r)
	view := sess.Snapshot()

	data := pageData{
		View:     view,
		Provider: s.assistant.MailProviderName(),
		Flash:    f,
		Form:     form,
	}
	if view.State != application.StateNoProfile {
		data.Labels = s.assistant.ContactTable(view.Profile).Labels()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html.tmpl", data); err != nil {
		s.logger.Error("rendering page", "session", sess.ID, "error", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error, form sendForm) {
	status, text := describeError(err)
	s.render(w, r, status, &flash{Kind: "error", Text: text}, form)
}

// describeError maps an action failure to a status code and the message
// shown above the form.
func describeError(err error) (int, string) {
	var perr *application.ProcessingError
	var serr *application.SendError

	switch {
	case errors.Is(err, application.ErrValidation):
		return http.StatusUnprocessableEntity, userMessage(err)
	case errors.Is(err, audio.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity, "Please upload a .wav or .mp3 file."
	case errors.Is(err, audio.ErrEmpty):
		return http.StatusUnprocessableEntity, "The audio file is empty."
	case errors.Is(err, audio.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "The audio file is too large."
	case errors.As(err, &perr):
		return http.StatusBadGateway, "Processing failed: " + perr.Err.Error()
	case errors.As(err, &serr):
		return http.StatusBadGateway, "Failed to send: " + serr.Err.Error()
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

func userMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), application.ErrValidation.Error()+": ")
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, nil, sendForm{})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	err := s.assistant.SaveProfile(sess, application.ProfileInput{
		Name:  r.PostFormValue("name"),
		Title: r.PostFormValue("title"),
		Email: r.PostFormValue("email"),
		Phone: r.PostFormValue("phone"),
	})
	if err != nil {
		s.renderError(w, r, err, sendForm{})
		return
	}

	s.render(w, r, http.StatusOK, &flash{Kind: "success", Text: "Profile saved."}, sendForm{})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+1<<20)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderError(w, r, audio.ErrTooLarge, sendForm{})
			return
		}
		s.renderError(w, r, fmt.Errorf("%w: audio file required", application.ErrValidation), sendForm{})
		return
	}
	defer r.MultipartForm.RemoveAll()

	var up application.Upload
	if file, header, err := r.FormFile("audio"); err == nil {
		defer file.Close()
		up = application.Upload{Filename: header.Filename, Body: file}
	}

	if err := s.assistant.Process(r.Context(), sess, up); err != nil {
		s.logger.Warn("processing audio", "session", sess.ID, "error", err)
		s.renderError(w, r, err, sendForm{})
		return
	}

	s.render(w, r, http.StatusOK, &flash{Kind: "success", Text: "Draft ready. Review it before sending."}, sendForm{})
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	form, err := readSendForm(r)
	if err != nil {
		s.renderError(w, r, err, form)
		return
	}

	if err := s.assistant.EditDraft(sess, r.PostFormValue("draft")); err != nil {
		s.renderError(w, r, err, form)
		return
	}

	s.render(w, r, http.StatusOK, &flash{Kind: "success", Text: "Draft saved."}, form)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	form, err := readSendForm(r)
	if err != nil {
		s.renderError(w, r, err, form)
		return
	}

	req := application.SendRequest{
		Labels:  r.PostForm["recipients"],
		Custom:  form.Custom,
		Subject: form.Subject,
		Draft:   r.PostFormValue("draft"),
	}

	authURL, err := s.assistant.BeginSend(r.Context(), sess, req, uuid.NewString())
	if err != nil {
		s.renderError(w, r, err, form)
		return
	}
	if authURL != "" {
		http.Redirect(w, r, authURL, http.StatusSeeOther)
		return
	}

	s.renderSent(w, r)
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	q := r.URL.Query()

	if reason := q.Get("error"); reason != "" {
		s.assistant.CancelSend(sess)
		s.logger.Warn("authorization denied", "session", sess.ID, "reason", reason)
		s.render(w, r, http.StatusForbidden, &flash{Kind: "error", Text: "Failed to send: authorization was denied."}, sendForm{})
		return
	}

	if err := s.assistant.CompleteSend(r.Context(), sess, q.Get("state"), q.Get("code")); err != nil {
		s.renderError(w, r, err, sendForm{})
		return
	}

	s.renderSent(w, r)
}

func (s *Server) renderSent(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, &flash{Kind: "success", Text: "Email sent successfully."}, sendForm{})
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	s.assistant.Discard(sessionFrom(r))
	s.render(w, r, http.StatusOK, &flash{Kind: "success", Text: "Note discarded."}, sendForm{})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.assistant.Reset(sessionFrom(r))
	s.render(w, r, http.StatusOK, nil, sendForm{})
}

func readSendForm(r *http.Request) (sendForm, error) {
	if err := r.ParseForm(); err != nil {
		return sendForm{}, fmt.Errorf("%w: the form could not be read", application.ErrValidation)
	}
	form := sendForm{
		Selected: make(map[string]bool),
		Custom:   r.PostFormValue("custom"),
		Subject:  r.PostFormValue("subject"),
	}
	for _, label := range r.PostForm["recipients"] {
		form.Selected[label] = true
	}
	return form, nil
}
