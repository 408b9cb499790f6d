package repository

import (
	"context"
	"testing"

	"bugTracker/internal/testutil"
	"bugTracker/models"
)

func TestCommentRepository_CRUDAndOrdering(t *testing.T) {
	gw := testutil.NewGateway(t, "commentrepo")
	repo := NewCommentRepository(gw)
	ctx := context.Background()
	alice := testutil.SeedUser(t, gw, "alice")
	bob := testutil.SeedUser(t, gw, "bob")
	proj := testutil.SeedProject(t, gw, "Apollo", alice)
	bug1 := testutil.SeedBug(t, gw, proj, "b1", alice)
	bug2 := testutil.SeedBug(t, gw, proj, "b2", alice)

	var ids []int64
	for _, in := range []models.CreateComment{
		{BugID: bug1, UserID: alice, CommentText: "first"},
		{BugID: bug1, UserID: bob, CommentText: "second"},
		{BugID: bug2, UserID: alice, CommentText: "other bug"},
	} {
		c, err := repo.Create(ctx, in)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if c.ID == 0 || c.CommentText != in.CommentText || c.CreatedAt.IsZero() {
			t.Fatalf("unexpected comment: %+v", c)
		}
		ids = append(ids, c.ID)
	}

	// By bug is oldest first
	thread, err := repo.ListByBug(ctx, bug1)
	if err != nil || len(thread) != 2 || thread[0].ID != ids[0] || thread[1].ID != ids[1] {
		t.Fatalf("list by bug: %v %+v", err, thread)
	}
	// Everything else is newest first
	all, err := repo.List(ctx)
	if err != nil || len(all) != 3 || all[0].ID != ids[2] {
		t.Fatalf("list: %v %+v", err, all)
	}
	byAlice, err := repo.ListByUser(ctx, alice)
	if err != nil || len(byAlice) != 2 || byAlice[0].ID != ids[2] {
		t.Fatalf("list by user: %v %+v", err, byAlice)
	}

	text := "edited"
	up, err := repo.Update(ctx, ids[0], models.UpdateComment{CommentText: &text})
	if err != nil || up == nil || up.CommentText != "edited" || up.BugID != bug1 {
		t.Fatalf("update: %v %+v", err, up)
	}
	missing, err := repo.Update(ctx, 999, models.UpdateComment{CommentText: &text})
	if err != nil || missing != nil {
		t.Fatalf("update missing: %+v err=%v", missing, err)
	}

	ok, err := repo.Delete(ctx, ids[2])
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	n, err := repo.DeleteByBug(ctx, bug1)
	if err != nil || n != 2 {
		t.Fatalf("delete by bug: n=%d err=%v", n, err)
	}
	n, err = repo.DeleteByBug(ctx, bug1)
	if err != nil || n != 0 {
		t.Fatalf("second delete by bug: n=%d err=%v", n, err)
	}
}

func TestCommentRepository_ForeignKeys(t *testing.T) {
	gw := testutil.NewGateway(t, "commentrepofk")
	repo := NewCommentRepository(gw)
	alice := testutil.SeedUser(t, gw, "alice")

	if _, err := repo.Create(context.Background(), models.CreateComment{BugID: 42, UserID: alice, CommentText: "x"}); err == nil {
		t.Fatalf("expected foreign key violation for unknown bug")
	}
}
