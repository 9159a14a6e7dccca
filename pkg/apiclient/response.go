package apiclient

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Response is the normalized result of a call. Data holds the decoded body:
// a map or slice for JSON, a string for text content types, and raw bytes
// for everything else. Raw always holds the undecoded body.
type Response struct {
	Status        int
	StatusText    string
	Header        http.Header
	Data          any
	Raw           []byte
	Duration      time.Duration
	CorrelationID string
}

// JSON re-decodes the raw body into out. It is a convenience for callers
// that want a typed struct instead of the generic Data value.
func (r *Response) JSON(out any) error {
	return json.Unmarshal(r.Raw, out)
}

// newResponse drains the transport response and decodes its body by
// content type. A decode failure degrades to a nil Data value.
func newResponse(hr *http.Response, correlationID string, duration time.Duration, logger *zap.Logger) (*Response, error) {
	defer hr.Body.Close()

	raw, err := io.ReadAll(hr.Body)
	if err != nil {
		return nil, err
	}

	r := &Response{
		Status:        hr.StatusCode,
		StatusText:    http.StatusText(hr.StatusCode),
		Header:        hr.Header,
		Raw:           raw,
		Duration:      duration,
		CorrelationID: correlationID,
	}

	r.Data = decodeBody(hr.Header.Get("Content-Type"), raw, correlationID, logger)
	return r, nil
}

func decodeBody(contentType string, raw []byte, correlationID string, logger *zap.Logger) any {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	switch {
	case mediaType == "application/json":
		if len(raw) == 0 {
			return nil
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			logger.Warn("failed to decode response body",
				zap.String("content_type", mediaType),
				zap.String("correlation_id", correlationID),
				zap.Error(err))
			return nil
		}
		return v

	case strings.HasPrefix(mediaType, "text/"):
		return string(raw)

	default:
		// application/pdf, application/octet-stream, image/* and anything
		// unrecognized stay as raw bytes.
		return raw
	}
}
