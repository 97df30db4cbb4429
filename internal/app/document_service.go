package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"learnhub/internal/contextstore"
	"learnhub/internal/model"
	"learnhub/internal/pkg/logger"
)

var ErrUnsupportedDocument = errors.New("document type not supported")

// documentExtensions is the upload allow-list; checked before anything is
// written to disk.
var documentExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".pptx": true,
	".txt":  true,
}

const documentExtensionList = ".docx, .pdf, .pptx, .txt"

type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id uint) (*model.Document, error)
	ListByOwnerID(ownerID uint) ([]model.Document, error)
	Delete(id uint) error
}

// TextExtractor degrades to "" on failure; *extract.Extractor in production.
type TextExtractor interface {
	Text(path, fileType string) string
}

type DocumentService struct {
	docRepo     DocumentStore
	extractor   TextExtractor
	indexer     ContextIndexer
	uploadsRoot string
	log         *logger.Logger
}

type DocumentUploadInput struct {
	UserID   uint
	Title    string
	Filename string
	File     io.Reader
}

func NewDocumentService(
	docRepo DocumentStore,
	extractor TextExtractor,
	indexer ContextIndexer,
	uploadsRoot string,
	log *logger.Logger,
) *DocumentService {
	return &DocumentService{
		docRepo:     docRepo,
		extractor:   extractor,
		indexer:     indexer,
		uploadsRoot: uploadsRoot,
		log:         log,
	}
}

// Upload validates the extension, persists the file, extracts text and
// commits the record. Non-empty extracted text is then indexed best-effort;
// a document whose extraction yields nothing is still saved and simply never
// reaches the embedding store.
func (s *DocumentService) Upload(ctx context.Context, input DocumentUploadInput) (*model.Document, error) {
	title := strings.TrimSpace(input.Title)
	if input.UserID == 0 || title == "" || input.Filename == "" || input.File == nil {
		return nil, ErrInvalidInput
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	if !documentExtensions[ext] {
		return nil, fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedDocument, ext, documentExtensionList)
	}
	fileType := strings.TrimPrefix(ext, ".")

	docDir := filepath.Join(s.uploadsRoot, "documents")
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir failed: %w", err)
	}
	docPath := filepath.Join(docDir, fmt.Sprintf("%d_%s", input.UserID, filepath.Base(input.Filename)))
	if err := saveFile(docPath, input.File); err != nil {
		return nil, err
	}

	content := s.extractor.Text(docPath, fileType)

	doc := &model.Document{
		Title:    title,
		FilePath: docPath,
		FileType: fileType,
		Content:  content,
		OwnerID:  input.UserID,
	}
	if err := s.docRepo.Create(doc); err != nil {
		return nil, err
	}

	if content != "" {
		if err := s.indexer.Index(ctx, contextstore.IndexRequest{
			UserID:   input.UserID,
			Kind:     contextstore.KindDocument,
			SourceID: doc.ID,
			Content:  content,
			Metadata: map[string]string{
				"title": title,
				"type":  fileType,
			},
		}); err != nil {
			s.log.Error("index document content failed", "document_id", doc.ID, "error", err)
		}
	}

	return doc, nil
}

func (s *DocumentService) List(userID uint) ([]model.Document, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.docRepo.ListByOwnerID(userID)
}

func (s *DocumentService) Get(userID, docID uint) (*model.Document, error) {
	doc, err := s.docRepo.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	if doc.OwnerID != userID {
		return nil, ErrAccessDenied
	}
	return doc, nil
}

func (s *DocumentService) Delete(userID, docID uint) error {
	doc, err := s.docRepo.GetByID(docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	if doc.OwnerID != userID {
		return ErrAccessDenied
	}

	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("remove document file failed", "path", doc.FilePath, "error", err)
	}
	return s.docRepo.Delete(docID)
}
