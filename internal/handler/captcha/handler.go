package captcha

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	captchaService "github.com/springlegal/website/backend/internal/service/captcha"
	"github.com/springlegal/website/backend/internal/session"
	"github.com/springlegal/website/backend/pkg/utils"
)

// Handler 验证码服务的HTTP处理器
type Handler struct {
	issuer   *captchaService.Issuer
	sessions *session.Manager
}

// New 创建验证码处理器
func New(issuer *captchaService.Issuer, sessions *session.Manager) *Handler {
	return &Handler{issuer: issuer, sessions: sessions}
}

// RegisterRoutes 注册验证码路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/captcha", h.handleIssue)
}

// handleIssue draws a new challenge and replaces the session's answer with it.
func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(w, r)

	challenge, err := h.issuer.Issue()
	if err != nil {
		log.Printf("[captcha] issue failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := sess.SetSecret(r.Context(), challenge.Text); err != nil {
		log.Printf("[captcha] store answer for session %s: %v", sess.ID(), err)
		utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.RespondBytes(w, http.StatusOK, "image/svg+xml; charset=utf-8", challenge.Image)
}
