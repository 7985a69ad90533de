package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"conduit/internal/registry/models"
	"conduit/pkg/domain"
	"conduit/pkg/platform/sentinel"
)

func validAPI() *models.API {
	return &models.API{
		ID:      domain.APIID(uuid.New()),
		Name:    "example",
		BaseURL: "https://api.example.com",
		Auth:    models.NoAuth(),
		Endpoints: []models.Endpoint{
			{OperationID: "me", Method: "GET", PathTemplate: "/me"},
		},
	}
}

func TestPutAndFindByID(t *testing.T) {
	s := NewInMemory()
	api := validAPI()

	if err := s.Put(context.Background(), api); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	found, err := s.FindByID(context.Background(), api.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "example" {
		t.Fatalf("unexpected record %+v", found)
	}
}

func TestPutValidates(t *testing.T) {
	s := NewInMemory()
	api := validAPI()
	api.BaseURL = ""

	if err := s.Put(context.Background(), api); err == nil {
		t.Fatalf("expected validation error for missing base URL")
	}
	if len(s.List(context.Background())) != 0 {
		t.Fatalf("invalid records must not be stored")
	}
}

func TestFindByIDNotFound(t *testing.T) {
	s := NewInMemory()
	_, err := s.FindByID(context.Background(), domain.APIID(uuid.New()))
	if !errors.Is(err, sentinel.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutReplaces(t *testing.T) {
	s := NewInMemory()
	api := validAPI()

	if err := s.Put(context.Background(), api); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	updated := *api
	updated.Name = "renamed"
	if err := s.Put(context.Background(), &updated); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	found, err := s.FindByID(context.Background(), api.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Name != "renamed" {
		t.Fatalf("Put must replace, got %q", found.Name)
	}
	if len(s.List(context.Background())) != 1 {
		t.Fatalf("replace must not grow the store")
	}
}
