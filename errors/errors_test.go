package errors

import (
	"context"
	"net/http"
	"testing"
)

func TestKindPropagates(t *testing.T) {
	const op Op = "Service.EventList"

	inner := E(Op("ProfileStore.Load"), Unavailable, "timeout")
	err := E(op, "list events", inner)

	if !Is(Unavailable, err) {
		t.Fatalf("Is(Unavailable, %v) = false, want true", err)
	}
	if got, want := Message(err), "timeout"; got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}
}

func TestResponseForError(t *testing.T) {
	for _, test := range []struct {
		Name   string
		Err    error
		Status int
		Text   string
	}{
		{"store failure is generic", E(Unavailable, "dial tcp: refused"), http.StatusServiceUnavailable, GenericNotice},
		{"internal is generic", E(Internal, "oops"), http.StatusInternalServerError, GenericNotice},
		{"invalid shows message", E(Op("Service.EventCreate"), Invalid, "location is required"), http.StatusBadRequest, "location is required"},
		{"session shows message", E(Session, "popup blocked"), http.StatusUnauthorized, "popup blocked"},
		{"rejected shows message", E(Rejected, "use your school account"), http.StatusForbidden, "use your school account"},
		{"not exist", E(NotExist), http.StatusNotFound, "not found"},
		{"canceled", context.Canceled, http.StatusBadRequest, GenericNotice},
	} {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			resp := ResponseForError(test.Err)
			if got, want := resp.Status, test.Status; got != want {
				t.Errorf("Status = %d, want %d", got, want)
			}
			if got, want := resp.Error, test.Text; got != want {
				t.Errorf("Error = %q, want %q", got, want)
			}
		})
	}
}

func TestResponseRoundTripKinds(t *testing.T) {
	for _, kind := range []Kind{Invalid, NotLoggedIn, Permission, NotExist, Exist, Unavailable, Session, Rejected} {
		resp := ResponseForError(E(kind, "x"))
		if err := resp.ToError(); !Is(kind, err) {
			t.Errorf("ToError() for %v = %v, want kind %v", kind, err, kind)
		}
	}
}
