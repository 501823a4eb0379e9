// Package pdf extracts the text layer of PDF result sheets with poppler's
// pdftotext. Scanned sheets have no usable text layer; the OCR stage
// handles those.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/vittaya051733-boop/tungtong1/internal/core/domain"
	"github.com/vittaya051733-boop/tungtong1/internal/core/ports/driven"
	"github.com/vittaya051733-boop/tungtong1/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.TextExtractor = (*Normaliser)(nil)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// magic is the header every PDF starts with.
var magic = []byte("%PDF")

// minSize is the smallest byte count accepted as a document.
const minSize = 10

// Validate checks that data looks like a PDF.
func Validate(data []byte) error {
	if len(data) < minSize || !bytes.HasPrefix(data, magic) {
		return fmt.Errorf("%w: %d bytes without PDF header", domain.ErrNotADocument, len(data))
	}
	return nil
}

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// Normaliser extracts text from PDF documents.
type Normaliser struct {
	runner CommandRunner
	binary string
}

// New creates a normaliser that shells out to pdftotext.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner, binary: "pdftotext"}
}

// CheckAvailable reports whether pdftotext is on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions tells users how to get pdftotext.
func InstallInstructions() string {
	return "pdftotext is part of poppler:\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils"
}

// Extract writes the document to a temp file and runs
// pdftotext -layout -enc UTF-8 -eol unix <file> -.
func (n *Normaliser) Extract(ctx context.Context, raw *domain.RawDocument) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	if err := Validate(raw.Content); err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "drawsync-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(raw.Content); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	out, err := n.runner.Run(ctx, n.binary, "-layout", "-enc", "UTF-8", "-eol", "unix", f.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	logger.Debug("pdftotext %s: %d bytes of text", raw.ID, len(out))
	return string(out), nil
}
