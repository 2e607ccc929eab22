package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/qbiq/biq-go/pkg/api"
	"github.com/qbiq/biq-go/pkg/wire"
)

// MaxBodySize bounds request bodies.
const MaxBodySize = 1 << 20

// requestFormat returns the format of the request body. A missing
// Content-Type means JSON.
func requestFormat(r *http.Request) (wire.Format, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return wire.FormatJSON, nil
	}
	return wire.ParseFormat(ct)
}

// replyFormat picks the first acceptable format from the Accept header,
// defaulting to JSON.
func replyFormat(r *http.Request) wire.Format {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if f, err := wire.ParseFormat(strings.TrimSpace(part)); err == nil {
			return f
		}
	}
	return wire.FormatJSON
}

// decode reads the request body into dst. Failures are written to w and
// returned; the caller only has to stop.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	format, err := requestFormat(r)
	if err != nil {
		s.writeError(w, r, http.StatusUnsupportedMediaType, err.Error(), "unsupported_media_type")
		return err
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large", "too_large")
		return err
	}

	codec := s.codec.WithFormat(format).WithSource(r.RemoteAddr)
	report, err := codec.DecodeReport(data, dst)

	envelope := fmt.Sprintf("%T", dst)
	envelope = envelope[strings.LastIndexByte(envelope, '.')+1:]

	switch {
	case err != nil:
		s.metrics.Decodes.WithLabelValues(envelope, format.String(), outcomeMalformed).Inc()
		if errors.Is(err, wire.ErrMalformed) {
			s.writeError(w, r, http.StatusBadRequest, err.Error(), "malformed")
		} else {
			s.writeError(w, r, http.StatusInternalServerError, "decode failed", "internal")
		}
		return err
	case len(report.Deprecated) > 0:
		s.metrics.Decodes.WithLabelValues(envelope, format.String(), outcomeDeprecated).Inc()
		w.Header().Set("Deprecation", strings.Join(report.Deprecated, ", "))
	default:
		s.metrics.Decodes.WithLabelValues(envelope, format.String(), outcomeOK).Inc()
	}
	return nil
}

// write encodes v in the format the client accepts.
func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, v any) {
	format := replyFormat(r)
	data, err := s.codec.WithFormat(format).Encode(v)
	if err != nil {
		s.errorLog("encode reply", "error", err)
		format = wire.FormatJSON
		status = http.StatusInternalServerError
		data, _ = wire.Marshal(api.NewErrorResponse("encode failed").WithCode("internal"))
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg, code string) {
	s.write(w, r, status, api.NewErrorResponse(msg).WithCode(code))
}
