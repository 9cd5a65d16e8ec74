package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-test/deep"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/clock"
	sberrors "github.com/sparkbytes/sparkbytes/errors"
	"github.com/sparkbytes/sparkbytes/memstore"
	"github.com/sparkbytes/sparkbytes/store"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*store.EventRepository, *store.ProfileStore, *memstore.Store) {
	t.Helper()

	mem := memstore.New()
	profiles := &store.ProfileStore{Profiles: mem}
	repo := &store.EventRepository{
		Events:   mem,
		Profiles: profiles,
		Clock:    clock.Fixed(testNow),
	}

	err := profiles.Save(context.Background(), sparkbytes.UserProfile{
		ID:        "user1",
		Name:      "Rhett",
		Email:     "rhett@bu.edu",
		Dietary:   sparkbytes.MustDiet(sparkbytes.None),
		CreatedAt: testNow.Add(-time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	return repo, profiles, mem
}

var sampleInput = sparkbytes.EventInput{
	Location:  "GSU Food Court",
	Food:      "Pizza",
	Date:      "2024-03-16T18:30",
	Zone:      sparkbytes.Central,
	ExtraInfo: "Bring a plate",
	Dietary:   sparkbytes.MustDiet(sparkbytes.Vegetarian),
}

func TestCreateThenList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, profiles, _ := newRepo(t)

	id, err := repo.Create(ctx, sampleInput, "user1")
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	events, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List(): %v", err)
	}
	want := []sparkbytes.Event{{
		ID:        id,
		Location:  sampleInput.Location,
		Food:      sampleInput.Food,
		Date:      sampleInput.Date,
		Zone:      sampleInput.Zone,
		ExtraInfo: sampleInput.ExtraInfo,
		Dietary:   sampleInput.Dietary,
		CreatorID: "user1",
		CreatedAt: testNow,
	}}
	if diff := deep.Equal(events, want); diff != nil {
		t.Fatalf("List() after Create; %v", diff)
	}

	profile, err := profiles.Load(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(profile.Events, []sparkbytes.EventID{id}); diff != nil {
		t.Fatalf("profile.Events; %v", diff)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, profiles, _ := newRepo(t)

	keep, err := repo.Create(ctx, sampleInput, "user1")
	if err != nil {
		t.Fatal(err)
	}
	gone, err := repo.Create(ctx, sampleInput, "user1")
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete(ctx, gone, "user1"); err != nil {
		t.Fatalf("Delete(): %v", err)
	}

	events, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(events), 1; got != want {
		t.Fatalf("len(List()) = %d, want %d", got, want)
	}
	if got, want := events[0].ID, keep; got != want {
		t.Fatalf("List()[0].ID = %v, want %v", got, want)
	}

	profile, err := profiles.Load(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(profile.Events, []sparkbytes.EventID{keep}); diff != nil {
		t.Fatalf("profile.Events after Delete; %v", diff)
	}
	if profile.Name != "Rhett" || profile.Email != "rhett@bu.edu" {
		t.Fatalf("Delete() lost profile fields: %+v", profile)
	}
}

func TestUpdateKeepsCreatorAndCreatedAt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _, _ := newRepo(t)

	id, err := repo.Create(ctx, sampleInput, "user1")
	if err != nil {
		t.Fatal(err)
	}
	original, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}

	changed := sampleInput
	changed.Food = "Bagels"
	changed.ExtraInfo = ""
	repo.Clock = clock.Fixed(testNow.Add(24 * time.Hour))

	if _, err := repo.Update(ctx, id, changed, "user1", original.CreatedAt); err != nil {
		t.Fatalf("Update(): %v", err)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Food != "Bagels" || got.ExtraInfo != "" {
		t.Errorf("Update() didn't overwrite fields: %+v", got)
	}
	if got.CreatorID != "user1" {
		t.Errorf("CreatorID = %v, want user1", got.CreatorID)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testNow)
	}

	// a missing createdAt is filled with the current time
	if _, err := repo.Update(ctx, id, changed, "user1", time.Time{}); err != nil {
		t.Fatal(err)
	}
	got, err = repo.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if want := testNow.Add(24 * time.Hour); !got.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want)
	}
}

func TestLoadMissingProfile(t *testing.T) {
	t.Parallel()
	_, profiles, _ := newRepo(t)

	_, err := profiles.Load(context.Background(), "newcomer")
	if !sberrors.Is(sberrors.NotExist, err) {
		t.Fatalf("Load(newcomer) err = %v, want NotExist", err)
	}
}

func TestSaveOverwritesWholeRecord(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, profiles, _ := newRepo(t)

	if _, err := repo.Create(ctx, sampleInput, "user1"); err != nil {
		t.Fatal(err)
	}

	// Only the name is passed: the event list is lost.
	if err := profiles.Save(ctx, sparkbytes.UserProfile{ID: "user1", Name: "R"}); err != nil {
		t.Fatal(err)
	}
	got, err := profiles.Load(ctx, "user1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Events) != 0 || got.Email != "" {
		t.Fatalf("Save() merged instead of overwriting: %+v", got)
	}
}

func TestCreateWithoutProfileWritesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, _, _ := newRepo(t)

	id, err := repo.Create(ctx, sampleInput, "ghost")
	if !sberrors.Is(sberrors.NotExist, err) {
		t.Fatalf("Create() err = %v, want NotExist", err)
	}
	if id != "" {
		t.Errorf("Create() id = %q, want none", id)
	}

	events, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("List() after failed Create = %+v, want none", events)
	}
}

func TestStoreUnavailable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, profiles, mem := newRepo(t)

	mem.Fail = errors.New("connection refused")

	if _, err := repo.List(ctx); !sberrors.Is(sberrors.Unavailable, err) {
		t.Errorf("List() err = %v, want Unavailable", err)
	}
	if _, err := profiles.Load(ctx, "user1"); !sberrors.Is(sberrors.Unavailable, err) {
		t.Errorf("Load() err = %v, want Unavailable", err)
	}
	if _, err := repo.Create(ctx, sampleInput, "user1"); !sberrors.Is(sberrors.Unavailable, err) {
		t.Errorf("Create() err = %v, want Unavailable", err)
	}
}
