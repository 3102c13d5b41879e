// Package enginetest provides a fake print engine for tests.
package enginetest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MinimalPDF builds a valid PDF with one page per entry in pages, each
// showing its text in Helvetica.
func MinimalPDF(pages ...string) []byte {
	if len(pages) == 0 {
		pages = []string{""}
	}

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	// 1 catalog, 2 page tree, 3 font, then a page and content pair per page.
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escapePDF(text))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func escapePDF(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Request is a render call received by the fake engine.
type Request struct {
	HTML     string `json:"html"`
	Filename string `json:"filename"`
}

// Engine is a fake print engine. Responses are served from Statuses in
// order; once exhausted every call succeeds with PDF.
type Engine struct {
	*httptest.Server

	mu       sync.Mutex
	Statuses []int
	PDF      []byte
	requests []Request
}

// New starts a fake engine that renders a two page PDF. It is closed when
// the test ends.
func New(t testing.TB) *Engine {
	t.Helper()
	e := &Engine{PDF: MinimalPDF("Agenda", "Minutes")}
	e.Server = httptest.NewServer(http.HandlerFunc(e.serve))
	t.Cleanup(e.Close)
	return e
}

func (e *Engine) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && r.URL.Path == "/" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost || r.URL.Path != "/api/generate-pdf" {
		http.NotFound(w, r)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	e.requests = append(e.requests, req)
	status := http.StatusOK
	if len(e.Statuses) > 0 {
		status = e.Statuses[0]
		e.Statuses = e.Statuses[1:]
	}
	body := e.PDF
	e.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(body)
}

// Fail queues failure statuses for the next calls.
func (e *Engine) Fail(statuses ...int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Statuses = append(e.Statuses, statuses...)
}

// Requests returns the render calls received so far.
func (e *Engine) Requests() []Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Request(nil), e.requests...)
}
