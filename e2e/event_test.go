package e2e

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-test/deep"

	"github.com/sparkbytes/sparkbytes"
	"github.com/sparkbytes/sparkbytes/errors"
)

func TestEventAnonymous(t *testing.T) {
	t.Parallel()

	srv := newStubServer(t)
	defer srv.Close()

	ctx := context.Background()
	client := srv.client("") // anonymous

	_, err := client.Events.Create(ctx, pizza("2024-03-16T18:30"))
	if !errors.Is(errors.NotLoggedIn, err) {
		t.Fatalf("anon user Events.Create got %v, want %v", err, errors.NotLoggedIn)
	}
	_, err = client.Events.List(ctx, sparkbytes.EventFilter{})
	if !errors.Is(errors.NotLoggedIn, err) {
		t.Fatalf("anon user Events.List got %v, want %v", err, errors.NotLoggedIn)
	}
}

func TestEventCreateThenList(t *testing.T) {
	t.Parallel()

	srv := newStubServer(t)
	defer srv.Close()

	ctx := context.Background()
	alice := srv.client("alice")
	onboard(t, alice, "Alice", sparkbytes.None)

	created, err := alice.Events.Create(ctx, pizza("2024-03-16T18:30", sparkbytes.Vegetarian))
	if err != nil {
		t.Fatalf("Events.Create(): %v", err)
	}
	if created.ID == "" || created.CreatorID != "alice" || !created.CreatedAt.Equal(testNow) {
		t.Fatalf("Events.Create() = %+v", created)
	}

	events, err := alice.Events.List(ctx, sparkbytes.EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(events, []sparkbytes.Event{created}); diff != nil {
		t.Fatalf("Events.List() after create; %v", diff)
	}
	if !events[0].Dietary.Has(sparkbytes.Vegetarian) {
		t.Errorf("dietary = %v, want vegetarian", events[0].Dietary)
	}

	got, err := alice.Events.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(got, created); diff != nil {
		t.Errorf("Events.Get(); %v", diff)
	}

	mine, err := alice.Events.Mine(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != created.ID {
		t.Errorf("Events.Mine() = %+v, want [%v]", mine, created.ID)
	}

	me, err := alice.Users.Me(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(me.Events, []sparkbytes.EventID{created.ID}); diff != nil {
		t.Errorf("profile events; %v", diff)
	}
}

func TestEventListFilters(t *testing.T) {
	t.Parallel()

	srv := newStubServer(t)
	defer srv.Close()

	ctx := context.Background()
	alice := srv.client("alice")
	onboard(t, alice, "Alice", sparkbytes.None)

	inputs := []sparkbytes.EventInput{
		pizza("2024-03-17T12:00", sparkbytes.Vegan, sparkbytes.GlutenFree),
		pizza("2024-03-16T12:00", sparkbytes.Vegan),
		pizza("2024-03-14T12:00", sparkbytes.Vegan),
	}
	inputs[1].Zone = sparkbytes.West

	var ids []sparkbytes.EventID
	for _, in := range inputs {
		e, err := alice.Events.Create(ctx, in)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, e.ID)
	}

	// A gluten free viewer only sees events sharing that flag.
	gf := srv.client("gf")
	onboard(t, gf, "GF", sparkbytes.GlutenFree)

	for _, test := range []struct {
		Name   string
		Client string
		Filter sparkbytes.EventFilter
		Want   []sparkbytes.EventID
	}{
		{"no filter", "alice", sparkbytes.EventFilter{}, []sparkbytes.EventID{ids[1], ids[0]}},
		{"zone", "alice", sparkbytes.EventFilter{Zone: sparkbytes.West}, []sparkbytes.EventID{ids[1]}},
		{"diet all of", "alice", sparkbytes.EventFilter{Dietary: sparkbytes.MustDiet(sparkbytes.Vegan, sparkbytes.GlutenFree)}, []sparkbytes.EventID{ids[0]}},
		{"viewer profile", "gf", sparkbytes.EventFilter{}, []sparkbytes.EventID{ids[0]}},
		{"nothing left", "gf", sparkbytes.EventFilter{Zone: sparkbytes.East}, []sparkbytes.EventID{}},
	} {
		events, err := srv.client(test.Client).Events.List(ctx, test.Filter)
		if err != nil {
			t.Fatalf("%s: %v", test.Name, err)
		}
		got := []sparkbytes.EventID{}
		for _, e := range events {
			got = append(got, e.ID)
		}
		if diff := deep.Equal(got, test.Want); diff != nil {
			t.Errorf("%s: Events.List() = %v; %v", test.Name, got, diff)
		}
	}
}

func TestEventUpdateDelete(t *testing.T) {
	t.Parallel()

	srv := newStubServer(t)
	defer srv.Close()

	ctx := context.Background()
	alice := srv.client("alice")
	bob := srv.client("bob")
	onboard(t, alice, "Alice", sparkbytes.None)
	onboard(t, bob, "Bob", sparkbytes.None)

	keep, err := alice.Events.Create(ctx, pizza("2024-03-16T18:30"))
	if err != nil {
		t.Fatal(err)
	}
	gone, err := alice.Events.Create(ctx, pizza("2024-03-17T18:30"))
	if err != nil {
		t.Fatal(err)
	}

	changed := keep.Input()
	changed.Food = "Bagels"
	if _, err := bob.Events.Update(ctx, keep.ID, changed); !errors.Is(errors.Permission, err) {
		t.Errorf("bob Events.Update() err = %v, want Permission", err)
	}
	if err := bob.Events.Delete(ctx, gone.ID); !errors.Is(errors.Permission, err) {
		t.Errorf("bob Events.Delete() err = %v, want Permission", err)
	}

	updated, err := alice.Events.Update(ctx, keep.ID, changed)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Food != "Bagels" || !updated.CreatedAt.Equal(keep.CreatedAt) {
		t.Errorf("Events.Update() = %+v", updated)
	}

	if err := alice.Events.Delete(ctx, gone.ID); err != nil {
		t.Fatalf("Events.Delete(): %v", err)
	}
	if _, err := alice.Events.Get(ctx, gone.ID); !errors.Is(errors.NotExist, err) {
		t.Errorf("Events.Get() after delete err = %v, want NotExist", err)
	}

	events, err := alice.Events.List(ctx, sparkbytes.EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ID != keep.ID {
		t.Errorf("Events.List() after delete = %+v", events)
	}

	me, err := alice.Users.Me(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(me.Events, []sparkbytes.EventID{keep.ID}); diff != nil {
		t.Errorf("profile events after delete; %v", diff)
	}
}

func TestEventValidation(t *testing.T) {
	t.Parallel()

	srv := newStubServer(t)
	defer srv.Close()

	ctx := context.Background()
	alice := srv.client("alice")
	onboard(t, alice, "Alice", sparkbytes.None)

	in := pizza("2024-03-16T18:30")
	in.Location = ""
	_, err := alice.Events.Create(ctx, in)
	if !errors.Is(errors.Invalid, err) {
		t.Fatalf("Events.Create() err = %v, want Invalid", err)
	}
	if got, want := errors.Message(err), "Please enter a location"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestCreateBeforeOnboarding(t *testing.T) {
	t.Parallel()

	srv := newStubServer(t)
	defer srv.Close()

	ctx := context.Background()
	alice := srv.client("alice")
	bob := srv.client("bob")
	onboard(t, alice, "Alice", sparkbytes.None)

	_, err := bob.Events.Create(ctx, pizza("2024-03-16T18:30"))
	if !errors.Is(errors.Invalid, err) {
		t.Fatalf("Events.Create() before onboarding err = %v, want Invalid", err)
	}
	if got, want := errors.Message(err), "Please finish signing up before posting an event"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}

	events, err := alice.Events.List(ctx, sparkbytes.EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("Events.List() = %+v, want no events", events)
	}
}

func TestEventFeed(t *testing.T) {
	t.Parallel()

	srv := newStubServer(t)
	defer srv.Close()

	ctx := context.Background()
	alice := srv.client("alice")
	onboard(t, alice, "Alice", sparkbytes.None)

	event, err := alice.Events.Create(ctx, pizza("2024-03-16T18:30"))
	if err != nil {
		t.Fatal(err)
	}

	feed, err := alice.Events.Feed(ctx, sparkbytes.EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(feed, []byte("UID:"+string(event.ID)+"@sparkbytes")) {
		t.Errorf("feed is missing event %v:\n%s", event.ID, feed)
	}
}
