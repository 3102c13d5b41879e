package api

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dgallion1/agendagen/internal/doctree"
	"github.com/dgallion1/agendagen/internal/parser"
	"github.com/dgallion1/agendagen/internal/render"
)

// handleConvert turns a JSON document into markup. Markup sent as text/html
// is already converted and passes through unchanged. With ?page=true the
// result is wrapped in the standalone print page.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body := s.limitBody(w, r)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var markup string
	switch mediaType {
	case "text/html":
		b, err := io.ReadAll(body)
		if err != nil {
			s.writeError(w, r, &requestError{err: err})
			return
		}
		markup = string(b)
	case "application/json", "":
		doc, err := parser.NewJSONParser(s.reg).Parse(body, "document")
		if err != nil {
			s.writeError(w, r, &requestError{err: err})
			return
		}
		markup, err = s.conv.Convert(doc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	default:
		jsonError(w, "unsupported content type: "+mediaType, http.StatusUnsupportedMediaType)
		return
	}

	if wrap, _ := strconv.ParseBool(r.URL.Query().Get("page")); wrap {
		page, err := render.Page(markup, render.PageOptions{Title: r.URL.Query().Get("title")})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		markup = page
	}
	writeHTML(w, markup)
}

func (s *Server) page(doc *doctree.Document, title string) (string, error) {
	markup, err := s.conv.Convert(doc)
	if err != nil {
		return "", err
	}
	return render.Page(markup, render.PageOptions{Title: title})
}
