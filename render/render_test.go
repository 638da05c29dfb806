// SPDX-License-Identifier: GPL-3.0-or-later
package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/CrawX/go-imap-archiver/domain"
	"github.com/CrawX/go-imap-archiver/domain/mocks"
	"github.com/CrawX/go-imap-archiver/log"
	"github.com/CrawX/go-imap-archiver/sanitize"

	"github.com/golang/mock/gomock"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
)

type fakeMerger struct {
	invalid  map[string]bool
	mergeErr error
	merged   [][]string
}

func (m *fakeMerger) Validate(path string) error {
	if m.invalid[filepath.Base(path)] {
		return errors.New("not a pdf")
	}
	return nil
}

func (m *fakeMerger) Merge(inFiles []string, outFile string) error {
	m.merged = append(m.merged, inFiles)
	if m.mergeErr != nil {
		return m.mergeErr
	}
	return os.WriteFile(outFile, []byte("%PDF merged"), 0o600)
}

func newTestRenderer(t *testing.T, converter domain.DocumentConverter, configs ...ConfigFunc) (*PdfRenderer, string) {
	dir := t.TempDir()
	r := NewPdfRenderer(dir, converter, configs...)
	r.now = func() time.Time { return time.Date(2024, 3, 15, 10, 45, 0, 0, time.UTC) }
	r.l = log.NullLogger()
	return r, dir
}

func writeFile(t *testing.T, path, content string) string {
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRenderPrimary(t *testing.T) {
	r, dir := newTestRenderer(t, nil)
	received := time.Date(2024, 3, 14, 16, 30, 0, 0, time.UTC)
	doc := domain.PrimaryDocument{
		Sender:     "jean@acme.com",
		SenderName: "Jean Dupont",
		Subject:    "Facture <n°42> & relance",
		Body:       "Bonjour,\n\nVeuillez trouver la facture.\nCordialement",
		ReceivedAt: &received,
	}

	path, err := r.RenderPrimary(doc)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Jean Dupont_20240314_Facture _n°42_ & relance.pdf"), path)
	assert.NoError(t, api.ValidateFile(path, nil))

	second, err := r.RenderPrimary(doc)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Jean Dupont_20240314_Facture _n°42_ & relance_1.pdf"), second)
}

func TestRenderPrimaryLongMultibyteNames(t *testing.T) {
	merger := &fakeMerger{}
	r, dir := newTestRenderer(t, nil, WithMerger(merger))
	received := time.Date(2024, 3, 14, 16, 30, 0, 0, time.UTC)
	doc := domain.PrimaryDocument{
		Sender:     "li@example.cn",
		SenderName: strings.Repeat("李", 40),
		Subject:    strings.Repeat("发票", 25),
		ReceivedAt: &received,
	}
	attachment := writeFile(t, filepath.Join(t.TempDir(), "bon.pdf"), "%PDF bon")

	// The merge removes the primary, so only the merged name collides.
	for _, suffix := range []string{"_complet.pdf", "_complet_1.pdf"} {
		primary, err := r.RenderPrimary(doc)
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, dir, filepath.Dir(primary))
		assert.LessOrEqual(t, len(filepath.Base(primary)), sanitize.MaxFilenameBytes)

		merged, err := r.MergeWithAttachments(context.Background(), primary, []string{attachment})
		assert.NoError(t, err)
		assert.True(t, strings.HasSuffix(merged, suffix), merged)
		assert.FileExists(t, merged)
		assert.LessOrEqual(t, len(filepath.Base(merged)), 255)
	}
}

func TestRenderPrimaryWithoutMetadata(t *testing.T) {
	r, dir := newTestRenderer(t, nil)

	path, err := r.RenderPrimary(domain.PrimaryDocument{})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "Inconnu_"))
	assert.Equal(t, dir, filepath.Dir(path))
	assert.NoError(t, api.ValidateFile(path, nil))
}

func TestRenderPrimaryUnwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	writeFile(t, blocker, "x")

	r := NewPdfRenderer(filepath.Join(blocker, "out"), nil)
	_, err := r.RenderPrimary(domain.PrimaryDocument{Subject: "x"})
	assert.True(t, domain.IsRenderError(err))
}

func TestMergeDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	converter := mocks.NewMockDocumentConverter(ctrl)
	merger := &fakeMerger{}
	r, dir := newTestRenderer(t, converter, WithMerger(merger))

	primary := writeFile(t, filepath.Join(dir, "ACME_20240315_Facture.pdf"), "%PDF primary")
	work := t.TempDir()
	pdf := writeFile(t, filepath.Join(work, "bon.PDF"), "%PDF bon")
	png := writeFile(t, filepath.Join(work, "logo.png"), "PNG")
	docx := writeFile(t, filepath.Join(work, "devis.docx"), "DOCX")
	txt := writeFile(t, filepath.Join(work, "notes.txt"), "ligne 1\n\nligne 3\n")
	zip := writeFile(t, filepath.Join(work, "archive.zip"), "PK")
	missing := filepath.Join(work, "missing.pdf")

	converted := writeFile(t, filepath.Join(work, "converted_1", "devis.pdf"), "%PDF devis")
	converter.EXPECT().
		Convert(gomock.Any(), docx, "pdf").
		Return(converted, nil)

	result, err := r.MergeWithAttachments(context.Background(), primary, []string{pdf, png, docx, txt, zip, missing})
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ACME_20240315_Facture_complet.pdf"), result)

	if assert.Len(t, merger.merged, 1) {
		assert.Equal(t, []string{primary, pdf, converted, filepath.Join(work, "notes_texte.pdf")}, merger.merged[0])
	}

	assert.NoFileExists(t, primary)
	assert.NoFileExists(t, converted)
	assert.NoDirExists(t, filepath.Dir(converted))
	assert.NoFileExists(t, filepath.Join(work, "notes_texte.pdf"))
	assert.FileExists(t, pdf)
	assert.FileExists(t, png)
	assert.FileExists(t, zip)
}

func TestMergeNothingAppended(t *testing.T) {
	merger := &fakeMerger{invalid: map[string]bool{"broken.pdf": true}}
	r, dir := newTestRenderer(t, nil, WithMerger(merger))

	primary := writeFile(t, filepath.Join(dir, "ACME_20240315.pdf"), "%PDF primary")
	work := t.TempDir()
	attachments := []string{
		writeFile(t, filepath.Join(work, "photo.jpg"), "JPG"),
		writeFile(t, filepath.Join(work, "broken.pdf"), "garbage"),
		writeFile(t, filepath.Join(work, "devis.xlsx"), "XLSX"),
	}

	result, err := r.MergeWithAttachments(context.Background(), primary, attachments)
	assert.NoError(t, err)
	assert.Equal(t, primary, result)
	assert.Empty(t, merger.merged)
	assert.FileExists(t, primary)

	result, err = r.MergeWithAttachments(context.Background(), primary, nil)
	assert.NoError(t, err)
	assert.Equal(t, primary, result)
}

func TestMergeFailureKeepsPrimary(t *testing.T) {
	merger := &fakeMerger{mergeErr: errors.New("disk full")}
	r, dir := newTestRenderer(t, nil, WithMerger(merger))

	primary := writeFile(t, filepath.Join(dir, "ACME_20240315.pdf"), "%PDF primary")
	attachment := writeFile(t, filepath.Join(t.TempDir(), "bon.pdf"), "%PDF bon")

	result, err := r.MergeWithAttachments(context.Background(), primary, []string{attachment})
	assert.NoError(t, err)
	assert.Equal(t, primary, result)
	assert.FileExists(t, primary)
	assert.NoFileExists(t, filepath.Join(dir, "ACME_20240315_complet.pdf"))
}

func TestMergeConverterFailureSkips(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	converter := mocks.NewMockDocumentConverter(ctrl)
	merger := &fakeMerger{}
	r, dir := newTestRenderer(t, converter, WithMerger(merger))

	primary := writeFile(t, filepath.Join(dir, "ACME_20240315.pdf"), "%PDF primary")
	docx := writeFile(t, filepath.Join(t.TempDir(), "devis.doc"), "DOC")
	converter.EXPECT().
		Convert(context.Background(), docx, "pdf").
		Return("", &domain.RenderError{Err: errors.New("soffice unavailable")})

	result, err := r.MergeWithAttachments(context.Background(), primary, []string{docx})
	assert.NoError(t, err)
	assert.Equal(t, primary, result)
}

func TestMergePassesContextToConverter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	converter := mocks.NewMockDocumentConverter(ctrl)
	merger := &fakeMerger{}
	r, dir := newTestRenderer(t, converter, WithMerger(merger))

	primary := writeFile(t, filepath.Join(dir, "ACME_20240315.pdf"), "%PDF primary")
	xlsx := writeFile(t, filepath.Join(t.TempDir(), "tarifs.xlsx"), "XLSX")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	converter.EXPECT().
		Convert(ctx, xlsx, "pdf").
		DoAndReturn(func(ctx context.Context, path, format string) (string, error) {
			return "", ctx.Err()
		})

	result, err := r.MergeWithAttachments(ctx, primary, []string{xlsx})
	assert.NoError(t, err)
	assert.Equal(t, primary, result)
	assert.Empty(t, merger.merged)
}

func TestMergeMissingPrimary(t *testing.T) {
	r, dir := newTestRenderer(t, nil)

	_, err := r.MergeWithAttachments(context.Background(), filepath.Join(dir, "nope.pdf"), nil)
	assert.True(t, domain.IsRenderError(err))
}

func TestMergeWithPdfcpu(t *testing.T) {
	r, _ := newTestRenderer(t, nil)

	primary, err := r.RenderPrimary(domain.PrimaryDocument{Sender: "a@acme.com", Subject: "Commande", Body: "Texte"})
	assert.NoError(t, err)

	txt := writeFile(t, filepath.Join(t.TempDir(), "export.csv"), "ref;qte\nA1;2\n")

	result, err := r.MergeWithAttachments(context.Background(), primary, []string{txt})
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(result, "_complet.pdf"))

	pages, err := api.PageCountFile(result)
	assert.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.NoFileExists(t, primary)
}

func TestDecodeText(t *testing.T) {
	text, err := decodeText([]byte("\xef\xbb\xbfcafé"))
	assert.NoError(t, err)
	assert.Equal(t, "café", text)

	text, err = decodeText([]byte("caf\xe9"))
	assert.NoError(t, err)
	assert.Equal(t, "café", text)
}
