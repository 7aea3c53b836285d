package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"myblog/internal/models"
	"myblog/internal/service"
)

func TestSignUp(t *testing.T) {
	cases := []struct {
		name      string
		form      url.Values
		signUpErr error
		wantLoc   string
		wantMsg   string
		wantCalls int
	}{
		{
			name:      "success",
			form:      url.Values{"email": {"a@b.co"}, "password": {"pw"}, "confirm_password": {"pw"}},
			wantLoc:   "/login",
			wantMsg:   msgSignupOK,
			wantCalls: 1,
		},
		{
			name:    "missing email",
			form:    url.Values{"password": {"pw"}, "confirm_password": {"pw"}},
			wantLoc: "/signup",
			wantMsg: msgFieldsRequired,
		},
		{
			name:    "missing confirmation",
			form:    url.Values{"email": {"a@b.co"}, "password": {"pw"}},
			wantLoc: "/signup",
			wantMsg: msgFieldsRequired,
		},
		{
			name:    "mismatch",
			form:    url.Values{"email": {"a@b.co"}, "password": {"pw"}, "confirm_password": {"other"}},
			wantLoc: "/signup",
			wantMsg: msgPasswordMismatch,
		},
		{
			name:      "duplicate email",
			form:      url.Values{"email": {"a@b.co"}, "password": {"pw"}, "confirm_password": {"pw"}},
			signUpErr: &service.ValidationError{Message: "Email already registered!", Err: service.ErrEmailTaken},
			wantLoc:   "/signup",
			wantMsg:   "Email already registered!",
			wantCalls: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServices()
			auth := &mockAuth{user: models.User{ID: "u-1"}, signUpErr: tc.signUpErr}
			s.Authorization = auth

			w := serve(newTestRouter(s), formRequest(http.MethodPost, "/signup", tc.form))
			assertRedirect(t, w, tc.wantLoc)
			if f := flashOf(t, w); f.Message != tc.wantMsg {
				t.Fatalf("flash: got %+v, want %q", f, tc.wantMsg)
			}
			if auth.signUpCalls != tc.wantCalls {
				t.Fatalf("SignUp calls: got %d, want %d", auth.signUpCalls, tc.wantCalls)
			}
		})
	}
}

func TestSignUp_StoreFaultIs500(t *testing.T) {
	s := newTestServices()
	s.Authorization = &mockAuth{signUpErr: errors.New("db down")}
	form := url.Values{"email": {"a@b.co"}, "password": {"pw"}, "confirm_password": {"pw"}}

	w := serve(newTestRouter(s), formRequest(http.MethodPost, "/signup", form))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", w.Code)
	}
}

func TestLogIn_SuccessSetsSessionCookie(t *testing.T) {
	s := newTestServices()
	auth := &mockAuth{user: models.User{ID: "u-9"}}
	sessions := &mockSessions{token: "tok-new"}
	s.Authorization, s.Sessions = auth, sessions

	form := url.Values{"email": {"a@b.co"}, "password": {"pw"}}
	w := serve(newTestRouter(s), formRequest(http.MethodPost, "/login", form))

	assertRedirect(t, w, "/")
	if f := flashOf(t, w); f.Severity != models.FlashSuccess || f.Message != msgLoginOK {
		t.Fatalf("flash: got %+v", f)
	}
	ck := responseCookie(w, sessionCookie)
	if ck == nil || ck.Value != "tok-new" || !ck.HttpOnly {
		t.Fatalf("session cookie: got %+v", ck)
	}
	if sessions.userID != "u-9" {
		t.Fatalf("session started for %q", sessions.userID)
	}
}

func TestLogIn_Failures(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
		err  error
	}{
		{name: "wrong password", form: url.Values{"email": {"a@b.co"}, "password": {"bad"}}, err: service.ErrInvalidCredentials},
		{name: "missing password", form: url.Values{"email": {"a@b.co"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServices()
			s.Authorization = &mockAuth{authErr: tc.err}

			w := serve(newTestRouter(s), formRequest(http.MethodPost, "/login", tc.form))
			assertRedirect(t, w, "/login")
			if f := flashOf(t, w); f.Severity != models.FlashError || f.Message != msgInvalidCredentials {
				t.Fatalf("flash: got %+v", f)
			}
			if ck := responseCookie(w, sessionCookie); ck != nil {
				t.Fatalf("no session cookie expected, got %+v", ck)
			}
		})
	}
}

func TestLogOut(t *testing.T) {
	s := newTestServices()
	sessions := &mockSessions{token: testSessionToken, userID: "u-1"}
	s.Sessions = sessions

	w := serve(newTestRouter(s), httptest.NewRequest(http.MethodGet, "/logout", nil), sessionCookieFor(testSessionToken))
	assertRedirect(t, w, "/")
	if f := flashOf(t, w); f.Message != msgLoggedOut {
		t.Fatalf("flash: got %+v", f)
	}
	if len(sessions.ended) != 1 || sessions.ended[0] != testSessionToken {
		t.Fatalf("ended sessions: %v", sessions.ended)
	}
	if ck := responseCookie(w, sessionCookie); ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("session cookie should be cleared, got %+v", ck)
	}
}

func TestSignupBindMessage(t *testing.T) {
	if got := signupBindMessage(errors.New("EOF")); got != msgFieldsRequired {
		t.Fatalf("got %q", got)
	}
}
