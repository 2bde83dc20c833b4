package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFieldErrors(t *testing.T) {
	var fe FieldErrors
	fe.Add("price_per_kwh", Required)
	fe.Add("connector_type", InvalidChoice)

	if !fe.Has("price_per_kwh") || fe.Has("power_kw") {
		t.Fatalf("Has reports wrong fields: %v", fe)
	}
	msgs := fe.Messages()
	if len(msgs["price_per_kwh"]) != 1 || msgs["price_per_kwh"][0] != "This field is required." {
		t.Errorf("messages = %v", msgs)
	}

	wrapped := fmt.Errorf("create connector: %w", fe)
	got, ok := AsFieldErrors(wrapped)
	if !ok || len(got) != 2 {
		t.Fatalf("AsFieldErrors(%v) = %v, %v", wrapped, got, ok)
	}
	if _, ok := AsFieldErrors(errors.New("boom")); ok {
		t.Error("plain error treated as validation failure")
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	if !errors.Is(NotFound("connector not found"), ErrNotFound) {
		t.Error("NotFound should wrap ErrNotFound")
	}
	if !errors.Is(Forbidden("nope"), ErrForbidden) {
		t.Error("Forbidden should wrap ErrForbidden")
	}
	cause := errors.New("disk full")
	e := Internal("could not save", cause)
	if e.Code != http.StatusInternalServerError || !errors.Is(e, cause) {
		t.Errorf("Internal = %+v", e)
	}
	var ae *AppError
	if !errors.As(fmt.Errorf("x: %w", BadRequest("bad")), &ae) || ae.Code != http.StatusBadRequest {
		t.Error("BadRequest not recoverable via errors.As")
	}
}
