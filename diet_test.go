package sparkbytes

import (
	"encoding/json"
	"testing"

	"github.com/go-test/deep"
)

func TestNewDietRejectsNoneWithOthers(t *testing.T) {
	t.Parallel()

	for _, f := range Flags[1:] {
		if _, err := NewDiet(None, f); err != ErrNoneExclusive {
			t.Errorf("NewDiet(none, %v) err = %v, want %v", f, err, ErrNoneExclusive)
		}
	}
	if _, err := NewDiet(None); err != nil {
		t.Errorf("NewDiet(none): %v", err)
	}
	if _, err := NewDiet(Vegan, GlutenFree, NutFree); err != nil {
		t.Errorf("NewDiet(vegan, glutenFree, nutFree): %v", err)
	}
}

func TestDietToggle(t *testing.T) {
	t.Parallel()

	d := MustDiet(Vegan, DairyFree)

	d = d.Toggle(None, true)
	if diff := deep.Equal(d.Set(), []Flag{None}); diff != nil {
		t.Fatalf("after checking none: %v", diff)
	}

	d = d.Toggle(Vegetarian, true)
	if diff := deep.Equal(d.Set(), []Flag{Vegetarian}); diff != nil {
		t.Fatalf("after checking vegetarian: %v", diff)
	}

	d = d.Toggle(NutFree, true).Toggle(Vegetarian, false)
	if diff := deep.Equal(d.Set(), []Flag{NutFree}); diff != nil {
		t.Fatalf("after unchecking vegetarian: %v", diff)
	}
}

// Any sequence of form toggles keeps none exclusive.
func TestDietToggleNeverMixesNone(t *testing.T) {
	t.Parallel()

	var d Diet
	for i := 0; i < 200; i++ {
		f := Flags[(i*7)%len(Flags)]
		d = d.Toggle(f, i%3 != 0)
		if d.Has(None) && d.Restricted() {
			t.Fatalf("step %d: none mixed with other flags: %v", i, d)
		}
	}
}

func TestDietJSON(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		Name  string
		Input string
		Want  []Flag
	}{
		{"all false", `{"none":false,"vegan":false}`, nil},
		{"missing flags are false", `{"vegan":true}`, []Flag{Vegan}},
		{"null", `null`, nil},
		{"none and others", `{"none":true,"glutenFree":true}`, []Flag{GlutenFree}},
		{"none alone", `{"none":true}`, []Flag{None}},
		{"unknown keys", `{"halal":true,"nutFree":true}`, []Flag{NutFree}},
	} {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			var d Diet
			if err := json.Unmarshal([]byte(test.Input), &d); err != nil {
				t.Fatal(err)
			}
			if diff := deep.Equal(d.Set(), test.Want); diff != nil {
				t.Errorf("Unmarshal(%s) = %v; %v", test.Input, d, diff)
			}
		})
	}

	js, err := json.Marshal(MustDiet(Vegetarian, NutFree))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"none":false,"vegetarian":true,"vegan":false,"glutenFree":false,"dairyFree":false,"nutFree":true}`
	if got := string(js); got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}
}

func TestParseDiet(t *testing.T) {
	t.Parallel()

	d, err := ParseDiet("vegan, glutenfree,")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := d.String(), "vegan,glutenFree"; got != want {
		t.Errorf("ParseDiet() = %q, want %q", got, want)
	}

	if _, err := ParseDiet("none,vegan"); err != ErrNoneExclusive {
		t.Errorf("ParseDiet(none,vegan) err = %v, want %v", err, ErrNoneExclusive)
	}
	if _, err := ParseDiet("keto"); err == nil {
		t.Error("ParseDiet(keto) err = nil, want error")
	}
}
