package repository

import (
	"context"
	"database/sql"
	"testing"

	"bugTracker/internal/testutil"
	"bugTracker/models"
)

func TestProjectRepository_CRUD(t *testing.T) {
	gw := testutil.NewGateway(t, "projectrepo")
	repo := NewProjectRepository(gw)
	ctx := context.Background()
	alice := testutil.SeedUser(t, gw, "alice")
	bob := testutil.SeedUser(t, gw, "bob")

	desc := "first"
	p1, err := repo.Create(ctx, models.CreateProject{ProjectName: "Apollo", Description: &desc, CreatedBy: alice})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p1.ID == 0 || p1.Description == nil || *p1.Description != "first" || p1.CreatedAt.IsZero() {
		t.Fatalf("unexpected project: %+v", p1)
	}
	p2, err := repo.Create(ctx, models.CreateProject{ProjectName: "Gemini", CreatedBy: bob})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p2.Description != nil {
		t.Fatalf("expected null description, got %q", *p2.Description)
	}

	// Unknown creator violates the foreign key
	if _, err := repo.Create(ctx, models.CreateProject{ProjectName: "X", CreatedBy: 999}); err == nil {
		t.Fatalf("expected foreign key failure")
	}

	all, err := repo.List(ctx)
	if err != nil || len(all) != 2 || all[0].ID != p2.ID {
		t.Fatalf("list newest first: %v %+v", err, all)
	}
	mine, err := repo.ListByCreator(ctx, alice)
	if err != nil || len(mine) != 1 || mine[0].ID != p1.ID {
		t.Fatalf("list by creator: %v %+v", err, mine)
	}
	none, err := repo.ListByCreator(ctx, 999)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil list: %v %+v", err, none)
	}

	// Clear description, keep name
	up, err := repo.Update(ctx, p1.ID, models.UpdateProject{Description: &sql.NullString{}})
	if err != nil || up == nil || up.Description != nil || up.ProjectName != "Apollo" {
		t.Fatalf("update: %v %+v", err, up)
	}

	ok, err := repo.Delete(ctx, p1.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByID(ctx, p1.ID)
	if err != nil || got != nil {
		t.Fatalf("expected deleted: %+v err=%v", got, err)
	}
}
