package handlers

import (
	"errors"

	"myblog/internal/metrics"
	"myblog/internal/models"
	"myblog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgFieldsRequired     = "All fields are required!"
	msgPasswordMismatch   = "Passwords do not match!"
	msgSignupOK           = "Signup successful! You can now log in."
	msgLoginOK            = "Login successful!"
	msgInvalidCredentials = "Invalid email or password!"
	msgLoggedOut          = "You have been logged out."
)

type signupForm struct {
	Email           string `form:"email" binding:"required"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

type loginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// signupBindMessage turns a binding failure into the message shown to the
// user. A confirmation mismatch is only reported once every field is present.
func signupBindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgFieldsRequired
	}
	mismatch := false
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return msgFieldsRequired
		case "eqfield":
			mismatch = true
		}
	}
	if mismatch {
		return msgPasswordMismatch
	}
	return msgFieldsRequired
}

// @Summary      Signup form
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /signup [get]
func (h *Handler) signupForm(c *gin.Context) {
	h.render(c, "signup.html", gin.H{"Title": "Sign up"})
}

// @Summary      Sign up
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        email             formData  string  true  "Email"
// @Param        password          formData  string  true  "Password"
// @Param        confirm_password  formData  string  true  "Password again"
// @Success      302  "redirect to /login on success, /signup otherwise"
// @Failure      500
// @Router       /signup [post]
func (h *Handler) signUp(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "invalid").Inc()
		h.redirectWithFlash(c, models.FlashError, signupBindMessage(err), "/signup")
		return
	}

	u, err := h.services.Authorization.SignUp(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			metrics.AuthAttemptsTotal.WithLabelValues("signup", "invalid").Inc()
			if h.log != nil {
				h.log.Infow("auth_sign_up_rejected", "email", form.Email, "err", err)
			}
			h.redirectWithFlash(c, models.FlashError, ve.Message, "/signup")
			return
		}
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "error").Inc()
		h.serverError(c, "auth_sign_up_failed", err, "email", form.Email)
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("signup", "ok").Inc()
	if h.log != nil {
		h.log.Infow("auth_signed_up", "user_id", u.ID)
	}
	h.redirectWithFlash(c, models.FlashSuccess, msgSignupOK, "/login")
}

// @Summary      Login form
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /login [get]
func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, "login.html", gin.H{"Title": "Log in"})
}

// @Summary      Log in
// @Description  Sets the session cookie on success.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        email     formData  string  true  "Email"
// @Param        password  formData  string  true  "Password"
// @Success      302  "redirect to / on success, /login otherwise"
// @Failure      500
// @Router       /login [post]
func (h *Handler) logIn(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		h.redirectWithFlash(c, models.FlashError, msgInvalidCredentials, "/login")
		return
	}

	ctx := c.Request.Context()
	u, err := h.services.Authorization.Authenticate(ctx, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
			if h.log != nil {
				h.log.Infow("auth_login_failed", "email", form.Email)
			}
			h.redirectWithFlash(c, models.FlashError, msgInvalidCredentials, "/login")
			return
		}
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		h.serverError(c, "auth_login_error", err, "email", form.Email)
		return
	}

	token, err := h.services.Sessions.Start(ctx, u.ID)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "error").Inc()
		h.serverError(c, "session_start_failed", err, "user_id", u.ID)
		return
	}
	h.setCookie(c, sessionCookie, token, int(h.cfg.SessionTTL.Seconds()))

	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	if h.log != nil {
		h.log.Infow("auth_logged_in", "user_id", u.ID)
	}
	h.redirectWithFlash(c, models.FlashSuccess, msgLoginOK, "/")
}

// @Summary      Log out
// @Tags         auth
// @Success      302  "redirect to /"
// @Router       /logout [get]
func (h *Handler) logOut(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		if err := h.services.Sessions.End(c.Request.Context(), token); err != nil && h.log != nil {
			h.log.Errorw("session_end_failed", "err", err)
		}
	}
	h.setCookie(c, sessionCookie, "", -1)
	h.redirectWithFlash(c, models.FlashSuccess, msgLoggedOut, "/")
}
