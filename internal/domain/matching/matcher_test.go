package matching

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/domain/metrics"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/domain/partnership"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/apperr"
	"github.com/nordeim/Maria-Family-Clinic-sub005/internal/platform/directory"
)

// -- Fakes --

type fakeDirectory struct {
	clinics map[uuid.UUID]*directory.Clinic
}

func newFakeDirectory(clinics ...*directory.Clinic) *fakeDirectory {
	f := &fakeDirectory{clinics: make(map[uuid.UUID]*directory.Clinic)}
	for _, c := range clinics {
		f.clinics[c.ID] = c
	}
	return f
}

func (f *fakeDirectory) GetClinic(_ context.Context, id uuid.UUID) (*directory.Clinic, error) {
	c, ok := f.clinics[id]
	if !ok {
		return nil, apperr.NotFound("clinic %s", id)
	}
	return c, nil
}

func (f *fakeDirectory) ListActiveClinics(_ context.Context) ([]*directory.Clinic, error) {
	var out []*directory.Clinic
	for _, c := range f.clinics {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

type fakeReviews struct {
	byClinic map[uuid.UUID]directory.ReviewSummary
}

func (f *fakeReviews) Summary(_ context.Context, clinicID uuid.UUID) (*directory.ReviewSummary, error) {
	s := f.byClinic[clinicID]
	return &s, nil
}

type fakeCatalog struct {
	volumes  map[uuid.UUID]int
	services map[uuid.UUID][]string
}

func (f *fakeCatalog) ServiceVolume(_ context.Context, clinicID uuid.UUID, _ string) (int, error) {
	return f.volumes[clinicID], nil
}

func (f *fakeCatalog) ServicesForClinic(_ context.Context, clinicID uuid.UUID) ([]string, error) {
	return f.services[clinicID], nil
}

type fakePartnerships struct {
	list []*partnership.Partnership
}

func (f *fakePartnerships) addActive(a, b uuid.UUID) *partnership.Partnership {
	p := &partnership.Partnership{
		ID:              uuid.New(),
		PrimaryClinicID: a,
		PartnerClinicID: b,
		PairKey:         partnership.PairKey(a, b),
		IsActive:        true,
	}
	f.list = append(f.list, p)
	return p
}

func (f *fakePartnerships) FindActiveByPair(_ context.Context, a, b uuid.UUID) (*partnership.Partnership, error) {
	for _, p := range f.list {
		if p.IsActive && p.Covers(a, b) {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePartnerships) ListForClinic(_ context.Context, clinicID uuid.UUID, filters partnership.Filters) ([]*partnership.Partnership, error) {
	var out []*partnership.Partnership
	for _, p := range f.list {
		if p.PrimaryClinicID != clinicID && p.PartnerClinicID != clinicID {
			continue
		}
		if filters.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeTrends struct {
	byPartnership map[uuid.UUID]string
}

func (f *fakeTrends) Trend(_ context.Context, pid uuid.UUID) (string, error) {
	if t, ok := f.byPartnership[pid]; ok {
		return t, nil
	}
	return metrics.TrendStable, nil
}

// clinicAt places a clinic roughly km kilometres north of the origin
// (1.3, 103.8), close enough for the small distances these tests use.
func clinicAt(km float64, specialties ...string) *directory.Clinic {
	lat := 1.3 + km/111.1949
	lon := 103.8
	return &directory.Clinic{
		ID:          uuid.New(),
		Name:        "clinic",
		Latitude:    &lat,
		Longitude:   &lon,
		Specialties: specialties,
		Active:      true,
	}
}

type fixture struct {
	dir     *fakeDirectory
	reviews *fakeReviews
	catalog *fakeCatalog
	parts   *fakePartnerships
	trends  *fakeTrends
	svc     *Service
}

func newFixture(clinics ...*directory.Clinic) *fixture {
	f := &fixture{
		dir:     newFakeDirectory(clinics...),
		reviews: &fakeReviews{byClinic: map[uuid.UUID]directory.ReviewSummary{}},
		catalog: &fakeCatalog{volumes: map[uuid.UUID]int{}, services: map[uuid.UUID][]string{}},
		parts:   &fakePartnerships{},
		trends:  &fakeTrends{byPartnership: map[uuid.UUID]string{}},
	}
	f.svc = NewService(f.dir, f.reviews, f.catalog, f.parts, f.trends, zerolog.Nop())
	return f
}

// -- Matcher tests --

func TestFindReferralNetwork_NegativeRadius(t *testing.T) {
	f := newFixture(clinicAt(0, "Cardiology"))
	_, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID: uuid.New(), Specialty: "Cardiology", RadiusKm: -1,
	})
	if !errors.Is(err, apperr.ErrBadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}

func TestFindReferralNetwork_UnknownRequester(t *testing.T) {
	f := newFixture()
	_, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID: uuid.New(), Specialty: "Cardiology", RadiusKm: 10,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestFindReferralNetwork_FiltersPool(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	match := clinicAt(5, "Cardiology")
	wrongSpecialty := clinicAt(5, "Dermatology")
	excluded := clinicAt(5, "Cardiology")
	inactive := clinicAt(5, "Cardiology")
	inactive.Active = false

	f := newFixture(requester, match, wrongSpecialty, excluded, inactive)
	result, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID:         requester.ID,
		Specialty:        "Cardiology",
		RadiusKm:         20,
		ExcludeClinicIDs: []uuid.UUID{excluded.ID},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].ClinicID != match.ID {
		t.Fatalf("expected exactly the matching clinic, got %+v", result.Candidates)
	}
}

func TestFindReferralNetwork_RadiusBound(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	near := clinicAt(9, "Cardiology")
	far := clinicAt(10.5, "Cardiology")

	f := newFixture(requester, near, far)
	result, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID: requester.ID, Specialty: "Cardiology", RadiusKm: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].ClinicID != near.ID {
		t.Fatalf("expected only the in-radius clinic, got %+v", result.Candidates)
	}
}

func TestFindReferralNetwork_ScoreComponents(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	cand := clinicAt(10, "Cardiology")
	cand.Languages = []string{"en", "zh", "ms"}

	f := newFixture(requester, cand)
	f.reviews.byClinic[cand.ID] = directory.ReviewSummary{Rating: 4.6, QualifyingCount: 3}
	f.catalog.volumes[cand.ID] = 80

	result, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID:           requester.ID,
		Specialty:          "Cardiology",
		RadiusKm:           30,
		PreferredLanguages: []string{"en", "ms", "ta"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(result.Candidates))
	}
	c := result.Candidates[0]

	// 40 specialty + 20 distance + 20 quality + 8 capacity + 10 language.
	if math.Abs(c.Score-98) > 0.01 {
		t.Errorf("score = %v, want ~98", c.Score)
	}
	if math.Abs(c.DistanceKm-10) > 0.01 {
		t.Errorf("distance = %v, want ~10", c.DistanceKm)
	}
	if c.Rating != 4.6 || c.ServiceCapacity != 80 {
		t.Errorf("rating/capacity not carried through: %+v", c)
	}
}

func TestFindReferralNetwork_CapacityCapped(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	cand := clinicAt(30, "Cardiology") // distance component zero

	f := newFixture(requester, cand)
	f.catalog.volumes[cand.ID] = 500 // would be 50 uncapped

	result, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID: requester.ID, Specialty: "Cardiology", RadiusKm: 40,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Candidates[0].Score; math.Abs(got-55) > 0.01 {
		t.Errorf("score = %v, want ~55 (40 specialty + 15 capped capacity)", got)
	}
}

func TestFindReferralNetwork_QualityNeedsQualifyingReview(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	cand := clinicAt(30, "Cardiology")

	f := newFixture(requester, cand)
	f.reviews.byClinic[cand.ID] = directory.ReviewSummary{Rating: 3.9, ReviewCount: 12, QualifyingCount: 0}

	result, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID: requester.ID, Specialty: "Cardiology", RadiusKm: 40,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.Candidates[0].Score; math.Abs(got-40) > 0.01 {
		t.Errorf("score = %v, want ~40: reviews without a qualifying rating earn nothing", got)
	}
}

func TestFindReferralNetwork_RequiredServices(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	equipped := clinicAt(5, "Cardiology")
	unequipped := clinicAt(5, "Cardiology")

	f := newFixture(requester, equipped, unequipped)
	f.catalog.services[equipped.ID] = []string{"echo", "stress-test", "holter"}
	f.catalog.services[unequipped.ID] = []string{"echo"}

	result, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID:         requester.ID,
		Specialty:        "Cardiology",
		RadiusKm:         20,
		RequiredServices: []string{"echo", "holter"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Candidates) != 1 || result.Candidates[0].ClinicID != equipped.ID {
		t.Fatalf("expected only the fully equipped clinic, got %+v", result.Candidates)
	}
}

func TestFindReferralNetwork_TrendAdjustsPartneredCandidates(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	improving := clinicAt(30, "Cardiology")
	declining := clinicAt(30, "Cardiology")
	neutral := clinicAt(30, "Cardiology")

	f := newFixture(requester, improving, declining, neutral)
	p1 := f.parts.addActive(requester.ID, improving.ID)
	p2 := f.parts.addActive(requester.ID, declining.ID)
	f.trends.byPartnership[p1.ID] = metrics.TrendImproving
	f.trends.byPartnership[p2.ID] = metrics.TrendDeclining

	result, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID: requester.ID, Specialty: "Cardiology", RadiusKm: 40,
	})
	if err != nil {
		t.Fatal(err)
	}
	scores := map[uuid.UUID]float64{}
	trends := map[uuid.UUID]string{}
	for _, c := range result.Candidates {
		scores[c.ClinicID] = c.Score
		trends[c.ClinicID] = c.Trend
	}
	if scores[improving.ID] != scores[neutral.ID]+5 {
		t.Errorf("improving partner should score +5 over neutral: %v vs %v",
			scores[improving.ID], scores[neutral.ID])
	}
	if scores[declining.ID] != scores[neutral.ID]-5 {
		t.Errorf("declining partner should score -5 under neutral: %v vs %v",
			scores[declining.ID], scores[neutral.ID])
	}
	if trends[improving.ID] != metrics.TrendImproving || trends[neutral.ID] != "" {
		t.Errorf("trend annotation wrong: %v", trends)
	}
	if len(result.ExistingPartnerships) != 2 {
		t.Errorf("expected both partnerships in context, got %d", len(result.ExistingPartnerships))
	}
}

func TestFindReferralNetwork_DeterministicOrdering(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	clinics := []*directory.Clinic{requester}
	for i := 0; i < 6; i++ {
		clinics = append(clinics, clinicAt(30, "Cardiology")) // identical scores
	}
	f := newFixture(clinics...)

	req := NetworkRequest{ClinicID: requester.ID, Specialty: "Cardiology", RadiusKm: 40}
	first, err := f.svc.FindReferralNetwork(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := f.svc.FindReferralNetwork(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first.Candidates, again.Candidates) {
			t.Fatal("identical inputs produced different orderings")
		}
	}
	for i := 1; i < len(first.Candidates); i++ {
		prev, cur := first.Candidates[i-1], first.Candidates[i]
		if prev.Score == cur.Score && prev.DistanceKm == cur.DistanceKm &&
			prev.ClinicID.String() > cur.ClinicID.String() {
			t.Error("tie not broken by ascending clinic id")
		}
	}
}

func TestFindReferralNetwork_EmptyResultIsNotError(t *testing.T) {
	requester := clinicAt(0, "Cardiology")
	f := newFixture(requester)

	result, err := f.svc.FindReferralNetwork(context.Background(), NetworkRequest{
		ClinicID: requester.ID, Specialty: "Cardiology", RadiusKm: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(result.Candidates))
	}
}

// Guard against the metrics service drifting away from the trend interface.
var _ TrendSource = (*metrics.Service)(nil)
