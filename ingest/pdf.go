package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"mediarag/types"
)

// PDFConverter posts a PDF to the document conversion service and returns
// the extracted markdown.
type PDFConverter struct {
	url    string
	client *http.Client
}

func NewPDFConverter(url string) *PDFConverter {
	return &PDFConverter{
		url:    url,
		client: &http.Client{},
	}
}

type converterResponse struct {
	Document struct {
		MdContent string `json:"md_content"`
	} `json:"document"`
}

func (c *PDFConverter) Convert(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("converter status %d: %s", resp.StatusCode, tail(string(body)))
	}

	var d converterResponse
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return "", err
	}
	return d.Document.MdContent, nil
}

// PDFLoader extracts one document per page, with page provenance metadata.
type PDFLoader struct {
	converter *PDFConverter
}

func NewPDFLoader(converter *PDFConverter) *PDFLoader {
	return &PDFLoader{converter: converter}
}

// Load validates the PDF, splits it into per-page files under the
// workspace, and converts each page to text. Page files are removed as soon
// as their page is converted.
func (l *PDFLoader) Load(ctx context.Context, path string, ws *Workspace) ([]types.Document, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("invalid PDF: %w", err)
	}

	pages, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	documents := make([]types.Document, 0, pages)
	for page := 1; page <= pages; page++ {
		pagePath := ws.Path(fmt.Sprintf("page_%d.pdf", page))
		if err := api.TrimFile(path, pagePath, []string{strconv.Itoa(page)}, nil); err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", page, err)
		}

		content, err := l.converter.Convert(ctx, pagePath)
		os.Remove(pagePath)
		if err != nil {
			return nil, fmt.Errorf("failed to convert page %d: %w", page, err)
		}

		documents = append(documents, types.Document{
			Content: content,
			Metadata: map[string]any{
				"source":      path,
				"page":        page,
				"total_pages": pages,
			},
		})
	}
	return documents, nil
}
