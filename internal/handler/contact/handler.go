package contact

import (
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/springlegal/website/backend/internal/model/contact"
	contactService "github.com/springlegal/website/backend/internal/service/contact"
	"github.com/springlegal/website/backend/internal/session"
	"github.com/springlegal/website/backend/pkg/utils"
)

const maxBodyBytes = 10 << 20

// Handler 联系表单的HTTP处理器
type Handler struct {
	svc      *contactService.Service
	sessions *session.Manager
}

// New 创建联系表单处理器
func New(svc *contactService.Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes 注册联系表单路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/contact", h.handleSubmit)
}

type submitResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    contact.Submission `json:"data"`
}

// handleSubmit 处理联系表单提交
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	input, err := decodeInput(r)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess := h.sessions.Load(w, r)
	stored, err := h.svc.Submit(r.Context(), input, sess)
	if err != nil {
		status, message := describeError(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[contact] submission failed: %v", err)
		}
		utils.RespondError(w, status, message)
		return
	}

	log.Printf("[contact] stored submission %d", stored.ID)
	utils.RespondJSON(w, http.StatusCreated, submitResponse{
		Success: true,
		Message: "Contact form submitted successfully",
		Data:    stored,
	})
}

// describeError maps a submission error to the status and visitor-facing text.
func describeError(err error) (int, string) {
	switch {
	case errors.Is(err, contactService.ErrMissingField):
		return http.StatusBadRequest, "Name, email, subject, and message are required"
	case errors.Is(err, contactService.ErrInvalidCaptcha):
		return http.StatusBadRequest, "Invalid captcha code. Please try again."
	case errors.Is(err, contactService.ErrInvalidEmail):
		return http.StatusBadRequest, "Invalid email address"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// decodeInput reads a JSON body, or a urlencoded/multipart form when the
// request says so.
func decodeInput(r *http.Request) (contact.Input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return contact.Input{}, err
		}
		in := contact.Input{
			Name:        r.PostFormValue("name"),
			Email:       r.PostFormValue("email"),
			Subject:     r.PostFormValue("subject"),
			Message:     r.PostFormValue("message"),
			TypeTheWord: r.PostFormValue("type_the_word"),
		}
		if values, ok := r.PostForm["phone"]; ok && len(values) > 0 {
			phone := values[0]
			in.Phone = &phone
		}
		return in, nil
	default:
		var in contact.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return contact.Input{}, err
		}
		return in, nil
	}
}
