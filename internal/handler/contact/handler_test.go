package contact

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contactService "github.com/springlegal/website/backend/internal/service/contact"
)

func TestDescribeError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{contactService.ErrMissingField, http.StatusBadRequest, "Name, email, subject, and message are required"},
		{contactService.ErrInvalidCaptcha, http.StatusBadRequest, "Invalid captcha code. Please try again."},
		{contactService.ErrInvalidEmail, http.StatusBadRequest, "Invalid email address"},
		{fmt.Errorf("%w: dial tcp: refused", contactService.ErrStoreFailure), http.StatusInternalServerError, "Internal server error"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		status, msg := describeError(tc.err)
		if status != tc.status || msg != tc.msg {
			t.Fatalf("describeError(%v) = %d %q, want %d %q", tc.err, status, msg, tc.status, tc.msg)
		}
	}
}

func TestDecodeInputJSONPhone(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"A","email":"a@b.com","subject":"S","message":"M","type_the_word":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	in, err := decodeInput(req)
	if err != nil {
		t.Fatalf("decodeInput err: %v", err)
	}
	if in.Phone != nil {
		t.Fatalf("absent phone should decode to nil, got %q", *in.Phone)
	}

	req = httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"A","phone":"+1 555"}`))
	in, err = decodeInput(req)
	if err != nil {
		t.Fatalf("decodeInput err: %v", err)
	}
	if in.Phone == nil || *in.Phone != "+1 555" {
		t.Fatalf("unexpected phone: %v", in.Phone)
	}
}

func TestDecodeInputMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"name": "A", "email": "a@b.com", "subject": "S", "message": "M", "type_the_word": "x"} {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField err: %v", err)
		}
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/contact", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	in, err := decodeInput(req)
	if err != nil {
		t.Fatalf("decodeInput err: %v", err)
	}
	if in.Name != "A" || in.TypeTheWord != "x" || in.Phone != nil {
		t.Fatalf("unexpected input: %+v", in)
	}
}
