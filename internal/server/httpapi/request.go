package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	contentTypeJSON    = "application/json"
	maxBodyBytes int64 = 1 << 20
)

var errInvalidBody = errors.New("invalid request body")

// postPayload carries the JSON fields of a post. Absent fields stay nil.
type postPayload struct {
	Title    *string `json:"title"`
	Body     *string `json:"body"`
	Username *string `json:"username"`
}

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// bindJSON decodes a JSON object into dst. An empty body leaves dst as is;
// a non-JSON content type or malformed JSON is errInvalidBody.
func bindJSON(c echo.Context, dst any) error {
	req := c.Request()
	if req.Body == nil || req.ContentLength == 0 {
		return nil
	}

	ct := strings.ToLower(req.Header.Get(echo.HeaderContentType))
	if !strings.HasPrefix(ct, contentTypeJSON) {
		return errInvalidBody
	}

	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errInvalidBody
	}
	return nil
}

func badRequest(c echo.Context) error {
	return respondMsg(c, http.StatusBadRequest, msgBadRequest)
}
