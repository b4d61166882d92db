package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskstream/taskstream/internal/application/apptest"
	"github.com/taskstream/taskstream/internal/domain"
	domerrors "github.com/taskstream/taskstream/internal/domain/errors"
)

func seedProject(store *apptest.FakeStore, createdBy domain.UserID) *domain.Project {
	p := &domain.Project{
		ID:          domain.NewProjectID(uuid.New()),
		Name:        "Todo List",
		Description: "starter board",
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now().Add(-time.Hour),
	}
	store.AddProject(p)
	return p
}

func TestUpdateProjectPatchesOnlyProvidedFields(t *testing.T) {
	store := apptest.NewFakeStore()
	creator := seedCreator(store)
	existing := seedProject(store, creator.ID)
	before := existing.UpdatedAt

	name := "Roadmap"
	uc := NewUpdateProject(store)
	updated, err := uc.Execute(context.Background(), UpdateProjectInput{
		ProjectID: existing.ID,
		Name:      &name,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if updated.Name != "Roadmap" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.Description != "starter board" {
		t.Errorf("description changed: %q", updated.Description)
	}
	if !updated.UpdatedAt.After(before) {
		t.Error("UpdatedAt should advance")
	}
	if store.Projects[existing.ID].Name != "Roadmap" {
		t.Error("patch not persisted")
	}
}

func TestUpdateProjectDescriptionOnly(t *testing.T) {
	store := apptest.NewFakeStore()
	creator := seedCreator(store)
	existing := seedProject(store, creator.ID)

	desc := "Q4 planning"
	uc := NewUpdateProject(store)
	updated, err := uc.Execute(context.Background(), UpdateProjectInput{
		ProjectID:   existing.ID,
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if updated.Name != "Todo List" {
		t.Errorf("name changed: %q", updated.Name)
	}
	if updated.Description != "Q4 planning" {
		t.Errorf("description = %q", updated.Description)
	}
}

func TestUpdateProjectNotFound(t *testing.T) {
	store := apptest.NewFakeStore()

	name := "ghost"
	uc := NewUpdateProject(store)
	_, err := uc.Execute(context.Background(), UpdateProjectInput{
		ProjectID: domain.NewProjectID(uuid.New()),
		Name:      &name,
	})
	if !errors.Is(err, domerrors.ErrProjectNotFound) {
		t.Fatalf("err = %v, want ErrProjectNotFound", err)
	}
}

func TestUpdateProjectRollsBackOnWriteFailure(t *testing.T) {
	store := apptest.NewFakeStore()
	creator := seedCreator(store)
	existing := seedProject(store, creator.ID)
	store.FailUpdateProject = errors.New("disk full")

	name := "Roadmap"
	uc := NewUpdateProject(store)
	_, err := uc.Execute(context.Background(), UpdateProjectInput{ProjectID: existing.ID, Name: &name})
	if err == nil {
		t.Fatal("expected error")
	}
	if store.Projects[existing.ID].Name != "Todo List" {
		t.Error("patch visible after rollback")
	}
}
