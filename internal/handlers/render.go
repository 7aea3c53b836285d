package handlers

import (
	"net/http"

	"myblog/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie   = "flash"
	sessionCookie = "session"

	flashMaxAge = 300
)

// render executes the named page template, consuming any pending flash.
func (h *Handler) render(c *gin.Context, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flash"] = h.popFlash(c)
	_, data["LoggedIn"] = c.Get(ctxUserID)
	c.HTML(http.StatusOK, name, data)
}

// redirectWithFlash stores a one-shot message and sends a 302 to location.
func (h *Handler) redirectWithFlash(c *gin.Context, severity, msg, location string) {
	h.setFlash(c, severity, msg)
	c.Redirect(http.StatusFound, location)
}

func (h *Handler) setFlash(c *gin.Context, severity, msg string) {
	token, err := h.services.FlashCodec.Encode(models.Flash{Severity: severity, Message: msg})
	if err != nil {
		if h.log != nil {
			h.log.Errorw("flash_encode_failed", "err", err)
		}
		return
	}
	h.setCookie(c, flashCookie, token, flashMaxAge)
}

func (h *Handler) popFlash(c *gin.Context) *models.Flash {
	token, err := c.Cookie(flashCookie)
	if err != nil || token == "" {
		return nil
	}
	h.setCookie(c, flashCookie, "", -1)

	f, err := h.services.FlashCodec.Decode(token)
	if err != nil {
		if h.log != nil {
			h.log.Infow("flash_decode_failed", "err", err)
		}
		return nil
	}
	return &f
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cfg.CookieSecure, true)
}

// serverError logs err under logKey and answers 500.
func (h *Handler) serverError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	if h.log != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.String(http.StatusInternalServerError, "Internal Server Error")
}
