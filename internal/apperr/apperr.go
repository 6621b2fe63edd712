package apperr

import (
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/wodhub/pkg"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidInput
	KindConflict
	KindQuotaExceeded
	KindCapacityExceeded
	KindInvalidState
)

var kindInfo = map[Kind]struct {
	status int
	code   string
}{
	KindInternal:         {http.StatusInternalServerError, "internal"},
	KindUnauthorized:     {http.StatusUnauthorized, "unauthorized"},
	KindForbidden:        {http.StatusForbidden, "forbidden"},
	KindNotFound:         {http.StatusNotFound, "not_found"},
	KindInvalidInput:     {http.StatusBadRequest, "invalid_input"},
	KindConflict:         {http.StatusConflict, "conflict"},
	KindQuotaExceeded:    {http.StatusUnprocessableEntity, "quota_exceeded"},
	KindCapacityExceeded: {http.StatusConflict, "capacity_exceeded"},
	KindInvalidState:     {http.StatusConflict, "invalid_state"},
}

func (k Kind) String() string {
	return kindInfo[k].code
}

// HTTPStatus returns the status code a handler responds with for errors of this kind.
func (k Kind) HTTPStatus() int {
	return kindInfo[k].status
}

// Error is a domain rule violation carrying its Kind. Err keeps the full chain
// for logs, Message is what the caller gets to see.
type Error struct {
	Kind    Kind
	Err     error
	Message string
}

func New(kind Kind, err error) *Error {
	e := &Error{Kind: kind, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

// Wrap is New for an err that wraps sentinel under some call context. The
// message starts at the sentinel so the context stays in the logs only.
func Wrap(kind Kind, sentinel, err error) *Error {
	msg := sentinel.Error()
	if full := err.Error(); msg != "" {
		if i := strings.Index(full, msg); i >= 0 {
			msg = full[i:]
		}
	}
	return &Error{Kind: kind, Err: err, Message: msg}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Rule maps the sentinels of a package to the kind they are reported as.
type Rule struct {
	Kind      Kind
	Sentinels []error
}

// Classify wraps err with the kind of the first rule whose sentinel is in its
// chain. Errors matching no rule are returned unchanged.
func Classify(err error, rules ...Rule) error {
	if err == nil {
		return nil
	}
	for _, r := range rules {
		for _, sentinel := range r.Sentinels {
			if errors.Is(err, sentinel) {
				return Wrap(r.Kind, sentinel, err)
			}
		}
	}
	return err
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError translates err into a JSON error response. Internal errors are
// logged and replaced with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	kind := KindOf(err)
	resp := ErrorResponse{
		Error:   kind.String(),
		Message: err.Error(),
	}

	if kind == KindInternal {
		log.Errorf("internal error: %s", err)
		resp.Message = "internal error"
	} else {
		var appErr *Error
		if errors.As(err, &appErr) {
			resp.Message = appErr.Message
			if resp.Message == "" {
				resp.Message = kind.String()
			}
		}
		log.Debugf("request failed [%s]: %s", kind, err)
	}

	pkg.WriteJSON(w, resp, kind.HTTPStatus())
}

// BadRequest writes an invalid_input response with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	pkg.WriteJSON(w, ErrorResponse{
		Error:   KindInvalidInput.String(),
		Message: msg,
	}, http.StatusBadRequest)
}
