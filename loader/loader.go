// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/pdfrag/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// Document info keys copied from the PDF Info dictionary into page metadata.
var infoKeys = map[string]string{
	"Title":    "title",
	"Author":   "author",
	"Subject":  "subject",
	"Creator":  "creator",
	"Producer": "producer",
}

// Loader extracts page-level documents from a file.
type Loader interface {
	Load(ctx context.Context, path string) ([]core.Document, error)
}

// PDFLoader extracts one document per non-blank PDF page.
type PDFLoader struct {
	password string
	logger   *slog.Logger
}

var _ Loader = (*PDFLoader)(nil)

// Option configures a PDFLoader.
type Option func(*PDFLoader) error

// WithPassword sets the password for encrypted PDFs.
func WithPassword(password string) Option {
	return func(l *PDFLoader) error {
		l.password = password
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *PDFLoader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewPDFLoader creates a PDF loader.
func NewPDFLoader(opts ...Option) (*PDFLoader, error) {
	l := &PDFLoader{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.logger = l.logger.With("component", "pdf-loader")
	return l, nil
}

// Load reads the PDF at path. Each returned document carries the 1-based
// page number, the page count, the source path and whatever the Info
// dictionary provides. Pages without text are skipped, so a scanned PDF
// yields no documents rather than an error.
func (l *PDFLoader) Load(ctx context.Context, path string) ([]core.Document, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat PDF: %w", err)
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotAFile)
	}

	var loaderOpts []documentloaders.PDFOptions
	if l.password != "" {
		loaderOpts = append(loaderOpts, documentloaders.WithPassword(l.password))
	}
	pages, err := documentloaders.NewPDF(f, stat.Size(), loaderOpts...).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to extract PDF text: %w", err)
	}

	info := l.readInfo(f, stat.Size())

	docs := make([]core.Document, 0, len(pages))
	skipped := 0
	for _, page := range pages {
		if strings.TrimSpace(page.PageContent) == "" {
			skipped++
			continue
		}
		metadata := make(map[string]any, len(page.Metadata)+len(info)+1)
		for k, v := range info {
			metadata[k] = v
		}
		for k, v := range page.Metadata {
			metadata[k] = v
		}
		metadata[core.MetadataSource] = path
		docs = append(docs, core.Document{
			Content:  page.PageContent,
			Metadata: metadata,
		})
	}

	l.logger.Debug("loaded PDF", "path", path, "pages", len(pages), "documents", len(docs), "skipped", skipped)
	return docs, nil
}

// readInfo returns the Info dictionary entries. Missing or unreadable
// dictionaries yield empty strings, which metadata cleaning later removes.
func (l *PDFLoader) readInfo(f *os.File, size int64) map[string]any {
	info := make(map[string]any, len(infoKeys))
	for _, key := range infoKeys {
		info[key] = ""
	}

	var (
		r   *pdf.Reader
		err error
	)
	if l.password != "" {
		r, err = pdf.NewReaderEncrypted(f, size, func() string { return l.password })
	} else {
		r, err = pdf.NewReader(f, size)
	}
	if err != nil {
		l.logger.Debug("could not read PDF info", "err", err)
		return info
	}

	dict := r.Trailer().Key("Info")
	if dict.IsNull() {
		return info
	}
	for pdfKey, key := range infoKeys {
		info[key] = strings.TrimSpace(dict.Key(pdfKey).Text())
	}
	return info
}
