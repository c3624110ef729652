package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"notevault/internal/cache"
	"notevault/internal/model"
	"notevault/internal/repository"
)

const noteCacheTTL = 5 * time.Minute

var (
	// ErrNoteNotFound is returned when no note matches the id.
	ErrNoteNotFound = errors.New("note not found")
	// ErrNotOwner is returned when the requester does not own the note.
	ErrNotOwner = errors.New("not authorized")
)

// NoteService exposes note CRUD scoped to the authenticated owner.
type NoteService interface {
	CreateNote(ctx context.Context, ownerID uuid.UUID, title, content string) (*model.Note, error)
	ListNotes(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error)
	GetNote(ctx context.Context, id, requesterID uuid.UUID) (*model.Note, error)
	UpdateNote(ctx context.Context, id, requesterID uuid.UUID, title, content string) (*model.Note, error)
	DeleteNote(ctx context.Context, id, requesterID uuid.UUID) error
}

type noteService struct {
	repo  repository.NoteRepository
	cache *cache.Client
}

// NewNoteService builds a NoteService with repository and cache.
func NewNoteService(repo repository.NoteRepository, cache *cache.Client) NoteService {
	return &noteService{repo: repo, cache: cache}
}

func (s *noteService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("note:%s", id)
}

// CreateNote persists a note owned by ownerID.
func (s *noteService) CreateNote(ctx context.Context, ownerID uuid.UUID, title, content string) (*model.Note, error) {
	note := &model.Note{
		ID:      uuid.New(),
		Title:   title,
		Content: content,
		UserID:  ownerID,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// ListNotes returns only the notes owned by ownerID.
func (s *noteService) ListNotes(ctx context.Context, ownerID uuid.UUID) ([]model.Note, error) {
	return s.repo.ListByUser(ctx, ownerID)
}

// GetNote loads a note and enforces ownership: existence is checked first,
// then the owner reference against the requester.
func (s *noteService) GetNote(ctx context.Context, id, requesterID uuid.UUID) (*model.Note, error) {
	note, err := s.loadCached(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UserID != requesterID {
		return nil, ErrNotOwner
	}
	return note, nil
}

// UpdateNote mutates title/content after the ownership check passes. Empty
// fields keep their current value. Mutations always read the repository, not
// the cache, so the check and the write-back never act on a stale copy.
func (s *noteService) UpdateNote(ctx context.Context, id, requesterID uuid.UUID, title, content string) (*model.Note, error) {
	note, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UserID != requesterID {
		return nil, ErrNotOwner
	}

	if title != "" {
		note.Title = title
	}
	if content != "" {
		note.Content = content
	}

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return note, nil
}

// DeleteNote removes a note after the ownership check passes. Reads the
// repository directly for the same reason as UpdateNote.
func (s *noteService) DeleteNote(ctx context.Context, id, requesterID uuid.UUID) error {
	note, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if note.UserID != requesterID {
		return ErrNotOwner
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// loadCached serves reads through the cache, falling back to the repository.
func (s *noteService) loadCached(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Note
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	note, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(note); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, noteCacheTTL)
	}
	return note, nil
}

// find reads straight from the repository.
func (s *noteService) find(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return note, nil
}
