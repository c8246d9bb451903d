package services

import (
	"context"
	"errors"
	"testing"
)

func TestCreatePlayer(t *testing.T) {
	svc := NewPlayerService(newMockPlayerRepo())
	ctx := context.Background()

	player, err := svc.CreatePlayer(ctx, PlayerInput{Name: "  Dana  ", Rating: ratingPtr(3.5)})
	if err != nil {
		t.Fatalf("CreatePlayer: %v", err)
	}
	if player.ID == 0 {
		t.Fatal("player id not assigned")
	}
	if player.Name != "Dana" {
		t.Fatalf("name %q, want trimmed %q", player.Name, "Dana")
	}

	if _, err := svc.CreatePlayer(ctx, PlayerInput{Name: "   "}); !errors.Is(err, ErrPlayerNameRequired) {
		t.Fatalf("expected ErrPlayerNameRequired, got %v", err)
	}
	if _, err := svc.CreatePlayer(ctx, PlayerInput{Name: "Dana"}); !errors.Is(err, ErrPlayerNameConflict) {
		t.Fatalf("expected ErrPlayerNameConflict, got %v", err)
	}
}

func TestUpdatePlayer(t *testing.T) {
	repo := newMockPlayerRepo(seedPlayers(2)...)
	svc := NewPlayerService(repo)
	ctx := context.Background()

	player, err := svc.UpdatePlayer(ctx, 1, PlayerInput{Name: "Renamed", Rating: ratingPtr(4.25)})
	if err != nil {
		t.Fatalf("UpdatePlayer: %v", err)
	}
	if player.Name != "Renamed" || player.Rating == nil || *player.Rating != 4.25 {
		t.Fatalf("update not applied: %+v", player)
	}

	// Clearing the rating is allowed.
	player, err = svc.UpdatePlayer(ctx, 1, PlayerInput{Name: "Renamed"})
	if err != nil {
		t.Fatalf("UpdatePlayer: %v", err)
	}
	if player.Rating != nil {
		t.Fatal("rating not cleared")
	}

	if _, err := svc.UpdatePlayer(ctx, 99, PlayerInput{Name: "x"}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestDeletePlayer(t *testing.T) {
	svc := NewPlayerService(newMockPlayerRepo(seedPlayers(1)...))
	ctx := context.Background()

	if err := svc.DeletePlayer(ctx, 1); err != nil {
		t.Fatalf("DeletePlayer: %v", err)
	}
	if err := svc.DeletePlayer(ctx, 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
	if _, err := svc.GetPlayerByID(ctx, 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound after delete, got %v", err)
	}
}
