package domain

import "testing"

func TestSelectModel(t *testing.T) {
	cases := []struct {
		name  string
		rhyme Rhyme
		want  string
	}{
		{"premium short", Rhyme{IsPremium: true, DurationSeconds: 20}, ModelPremium},
		{"premium long", Rhyme{IsPremium: true, DurationSeconds: 90}, ModelPremium},
		{"standard long", Rhyme{DurationSeconds: 46}, ModelMidTier},
		{"standard at boundary", Rhyme{DurationSeconds: 45}, ModelEconomical},
		{"standard short", Rhyme{DurationSeconds: 30}, ModelEconomical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SelectModel(tc.rhyme); got != tc.want {
				t.Fatalf("SelectModel(%+v) = %q, want %q", tc.rhyme, got, tc.want)
			}
		})
	}
}

func TestVideoJobAhead(t *testing.T) {
	earlier := VideoJob{Priority: PriorityStandard}
	later := VideoJob{Priority: PriorityPremium, CreatedAt: earlier.CreatedAt.Add(1)}
	if !later.Ahead(earlier) {
		t.Fatal("premium job queued later should still rank ahead of a standard job")
	}
	if earlier.Ahead(later) {
		t.Fatal("standard job should not rank ahead of a premium job")
	}
}
