package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/render"
	gerr "github.com/jekabolt/ecomm-insights/internal/errors"
	"github.com/jekabolt/ecomm-insights/internal/form"
	"google.golang.org/grpc/status"
)

type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	Kind       string `json:"kind,omitempty"`  // error kind
	ErrorText  string `json:"error,omitempty"` // application-level error message
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// ErrRender maps err to a response using its kind or grpc status.
func ErrRender(err error) render.Renderer {
	code := gerr.HTTPStatus(err)
	msg := err.Error()
	var ge *gerr.Error
	if !errors.As(err, &ge) {
		if st, ok := status.FromError(err); ok {
			msg = st.Message()
			if v := form.Violations(err); len(v) > 0 {
				fields := make([]string, 0, len(v))
				for f, d := range v {
					fields = append(fields, f+": "+d)
				}
				sort.Strings(fields)
				msg += ": " + strings.Join(fields, " ")
			}
		}
	}
	kind := gerr.KindOf(err)
	if kind == gerr.KindUnknown && code == http.StatusBadRequest {
		kind = gerr.KindInvalid
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     http.StatusText(code),
		Kind:           string(kind),
		ErrorText:      msg,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		Kind:           string(gerr.KindInvalid),
		ErrorText:      err.Error(),
	}
}

func renderErr(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrRender(err)
	if e, ok := resp.(*ErrResponse); ok && e.HTTPStatusCode >= http.StatusInternalServerError {
		slog.Default().ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
	}
	_ = render.Render(w, r, resp)
}
