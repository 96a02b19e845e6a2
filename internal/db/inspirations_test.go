package db

import (
	"errors"
	"testing"

	"github.com/musekeep/muse/internal/models"
)

func mustCreateInspiration(t *testing.T, s *Store, content, tags string) *models.Inspiration {
	t.Helper()

	note, err := s.CreateInspiration(content, tags)
	if err != nil {
		t.Fatalf("failed to prepare inspiration: %v", err)
	}
	return note
}

func TestCreateInspirationRequiresContent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.CreateInspiration("", "tag")
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearchInspirationsCaseInsensitive(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	match := mustCreateInspiration(t, store, "Build a Reading habit", "books,habit")
	mustCreateInspiration(t, store, "unrelated thought", "misc")

	byContent, err := store.SearchInspirations("reading")
	if err != nil {
		t.Fatalf("SearchInspirations returned error: %v", err)
	}
	if len(byContent) != 1 || byContent[0].ID != match.ID {
		t.Fatalf("expected content match, got %+v", byContent)
	}

	byTag, err := store.SearchInspirations("BOOKS")
	if err != nil {
		t.Fatalf("SearchInspirations returned error: %v", err)
	}
	if len(byTag) != 1 || byTag[0].ID != match.ID {
		t.Fatalf("expected tag match, got %+v", byTag)
	}
}

func TestSearchExcludesDeleted(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	note := mustCreateInspiration(t, store, "fleeting", "")
	if err := store.DeleteInspiration(note.ID); err != nil {
		t.Fatalf("DeleteInspiration returned error: %v", err)
	}

	results, err := store.SearchInspirations("fleeting")
	if err != nil {
		t.Fatalf("SearchInspirations returned error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected deleted note hidden from search, got %+v", results)
	}
}

func TestInspirationBinRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	note := mustCreateInspiration(t, store, "keep this", "ideas")

	if err := store.DeleteInspiration(note.ID); err != nil {
		t.Fatalf("DeleteInspiration returned error: %v", err)
	}

	deleted, err := store.ListDeletedInspirations()
	if err != nil {
		t.Fatalf("ListDeletedInspirations returned error: %v", err)
	}
	if len(deleted) != 1 || deleted[0].ID != note.ID {
		t.Fatalf("expected the note in the bin, got %+v", deleted)
	}

	if err := store.RestoreInspiration(note.ID); err != nil {
		t.Fatalf("RestoreInspiration returned error: %v", err)
	}
	restored, err := store.GetInspiration(note.ID)
	if err != nil {
		t.Fatalf("GetInspiration returned error: %v", err)
	}
	if restored.IsDeleted || restored.Content != note.Content || restored.Tags != note.Tags {
		t.Fatalf("expected note restored unchanged, got %+v", restored)
	}
}

func TestEmptyInspirationBin(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	kept := mustCreateInspiration(t, store, "kept", "")
	binned := mustCreateInspiration(t, store, "binned", "")

	if err := store.DeleteInspiration(binned.ID); err != nil {
		t.Fatalf("DeleteInspiration returned error: %v", err)
	}
	n, err := store.EmptyInspirationBin()
	if err != nil {
		t.Fatalf("EmptyInspirationBin returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged note, got %d", n)
	}

	if _, err := store.GetInspiration(kept.ID); err != nil {
		t.Fatalf("expected live note untouched: %v", err)
	}
	if _, err := store.GetInspiration(binned.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected binned note gone, got %v", err)
	}
}

func TestUpdateInspiration(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	note := mustCreateInspiration(t, store, "draft", "a")

	if err := store.UpdateInspiration(note.ID, "final", "a,b"); err != nil {
		t.Fatalf("UpdateInspiration returned error: %v", err)
	}

	updated, err := store.GetInspiration(note.ID)
	if err != nil {
		t.Fatalf("GetInspiration returned error: %v", err)
	}
	if updated.Content != "final" || updated.Tags != "a,b" {
		t.Fatalf("expected updated note, got %+v", updated)
	}
}
