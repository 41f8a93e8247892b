package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// writeMinimalPDF emits a well-formed PDF with the requested number of
// empty pages, computing the cross-reference table as it goes.
func writeMinimalPDF(t *testing.T, path string, pages int) {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	addObj(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		addObj(fmt.Sprintf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n", i+3))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xref)

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestPDFLoadPerPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"document":{"md_content":"content of call %d"}}`, n)
	}))
	defer srv.Close()

	pdfPath := filepath.Join(t.TempDir(), "report.pdf")
	writeMinimalPDF(t, pdfPath, 2)

	ws := newTestWorkspace(t)
	loader := NewPDFLoader(NewPDFConverter(srv.URL))

	docs, err := loader.Load(context.Background(), pdfPath, ws)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2", len(docs))
	}

	for i, doc := range docs {
		if doc.Content != fmt.Sprintf("content of call %d", i+1) {
			t.Errorf("page %d content = %q", i+1, doc.Content)
		}
		if doc.Metadata["page"] != i+1 {
			t.Errorf("page %d metadata page = %v", i+1, doc.Metadata["page"])
		}
		if doc.Metadata["total_pages"] != 2 {
			t.Errorf("page %d metadata total_pages = %v", i+1, doc.Metadata["total_pages"])
		}
		if doc.Metadata["source"] != pdfPath {
			t.Errorf("page %d metadata source = %v", i+1, doc.Metadata["source"])
		}
	}

	// Per-page files are removed once their page is converted.
	leftovers, err := filepath.Glob(ws.Path("page_*.pdf"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(leftovers) != 0 {
		t.Errorf("page files left behind: %v", leftovers)
	}
}

func TestPDFLoadRejectsInvalidFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("converter called for an invalid PDF")
	}))
	defer srv.Close()

	bogus := filepath.Join(t.TempDir(), "bogus.pdf")
	if err := os.WriteFile(bogus, []byte("this is not a pdf"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loader := NewPDFLoader(NewPDFConverter(srv.URL))
	if _, err := loader.Load(context.Background(), bogus, newTestWorkspace(t)); err == nil {
		t.Fatal("Load of an invalid PDF succeeded")
	}
}

func TestPDFLoadConverterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	pdfPath := filepath.Join(t.TempDir(), "report.pdf")
	writeMinimalPDF(t, pdfPath, 1)

	loader := NewPDFLoader(NewPDFConverter(srv.URL))
	if _, err := loader.Load(context.Background(), pdfPath, newTestWorkspace(t)); err == nil {
		t.Fatal("Load succeeded against a failing converter")
	}
}
