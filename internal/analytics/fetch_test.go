package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/reviewpulse/reviewpulse-api/internal/models"
	"go.uber.org/zap"
)

// stubReviewRepo implements database.ReviewRepositoryInterface with
// function fields so each test wires only what it needs.
type stubReviewRepo struct {
	listByRange  func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error)
	distinctLocs func(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error)
}

func (s *stubReviewRepo) ListByRange(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
	if s.listByRange != nil {
		return s.listByRange(ctx, tenantID, locationIDs, from, to, limit, offset)
	}
	return nil, nil
}

func (s *stubReviewRepo) DistinctLocationIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	if s.distinctLocs != nil {
		return s.distinctLocs(ctx, tenantID)
	}
	return nil, nil
}

func makeReviews(n int, at time.Time) []*models.Review {
	out := make([]*models.Review, n)
	for i := range out {
		out[i] = reviewAt(at, 4)
	}
	return out
}

func testRange() models.DateRange {
	return models.DateRange{
		From:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
		Preset: PresetLast30Days,
	}
}

func TestFetchRange_SinglePage(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	calls := 0
	repo := &stubReviewRepo{
		listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
			calls++
			if limit != fetchPageSize {
				t.Errorf("limit = %d, want %d", limit, fetchPageSize)
			}
			return makeReviews(42, at), nil
		},
	}

	fetcher := NewFetcher(repo, zap.NewNop())
	reviews, truncated, err := fetcher.FetchRange(context.Background(), uuid.New(), nil, testRange())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(reviews) != 42 || truncated || calls != 1 {
		t.Errorf("got %d reviews, truncated=%v, calls=%d", len(reviews), truncated, calls)
	}
}

func TestFetchRange_PaginatesSequentially(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	var offsets []int
	repo := &stubReviewRepo{
		listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
			offsets = append(offsets, offset)
			if offset >= 2000 {
				return makeReviews(300, at), nil
			}
			return makeReviews(fetchPageSize, at), nil
		},
	}

	fetcher := NewFetcher(repo, zap.NewNop())
	reviews, truncated, err := fetcher.FetchRange(context.Background(), uuid.New(), nil, testRange())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(reviews) != 2300 || truncated {
		t.Errorf("got %d reviews, truncated=%v", len(reviews), truncated)
	}
	wantOffsets := []int{0, 1000, 2000}
	if len(offsets) != len(wantOffsets) {
		t.Fatalf("offsets = %v", offsets)
	}
	for i, want := range wantOffsets {
		if offsets[i] != want {
			t.Errorf("offsets[%d] = %d, want %d", i, offsets[i], want)
		}
	}
}

func TestFetchRange_HardCapTruncates(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	repo := &stubReviewRepo{
		listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
			return makeReviews(fetchPageSize, at), nil
		},
	}

	fetcher := NewFetcher(repo, zap.NewNop())
	reviews, truncated, err := fetcher.FetchRange(context.Background(), uuid.New(), nil, testRange())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(reviews) != fetchHardCap {
		t.Errorf("got %d reviews, want exactly the cap %d", len(reviews), fetchHardCap)
	}
	if !truncated {
		t.Error("Expected truncated result at the hard cap")
	}
}

func TestFetchRange_ErrorWrapped(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection reset")
	repo := &stubReviewRepo{
		listByRange: func(ctx context.Context, tenantID uuid.UUID, locationIDs []uuid.UUID, from, to time.Time, limit, offset int) ([]*models.Review, error) {
			return nil, dbErr
		},
	}

	fetcher := NewFetcher(repo, zap.NewNop())
	_, _, err := fetcher.FetchRange(context.Background(), uuid.New(), nil, testRange())
	if err == nil {
		t.Fatal("Expected error")
	}

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %T", err)
	}
	if fetchErr.Op != "list_reviews" {
		t.Errorf("Op = %q", fetchErr.Op)
	}
	if !errors.Is(err, dbErr) {
		t.Error("Expected the cause to survive unwrapping")
	}
}
