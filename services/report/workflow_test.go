package report

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"citizenreport/apperrors"
	"citizenreport/models"
	"citizenreport/services/authz"
	"citizenreport/services/geo"
	"citizenreport/services/issues"
)

type fakeIssueStore struct {
	issues    []models.Issue
	insertErr error
}

func (s *fakeIssueStore) InsertIssue(_ context.Context, issue *models.Issue) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.issues = append(s.issues, *issue)
	return nil
}

func (s *fakeIssueStore) FindIssues(_ context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	var out []models.Issue
	for _, i := range s.issues {
		if filter.Matches(i) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (s *fakeIssueStore) FindIssueByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	for _, i := range s.issues {
		if i.ID == id {
			issue := i
			return &issue, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeIssueStore) SetIssueStatus(_ context.Context, id primitive.ObjectID, status models.IssueStatus) (*models.Issue, error) {
	for n := range s.issues {
		if s.issues[n].ID == id {
			s.issues[n].Status = status
			issue := s.issues[n]
			return &issue, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *fakeIssueStore) FindRecentWithCoordinates(_ context.Context, limit int64) ([]models.Issue, error) {
	return s.issues, nil
}

func (s *fakeIssueStore) CountByStatus(_ context.Context) (map[models.IssueStatus]int64, error) {
	return map[models.IssueStatus]int64{}, nil
}

type fakeUploader struct {
	uploadErr error
	uploaded  []string
	removed   []string
}

func (u *fakeUploader) Upload(_ context.Context, _ []byte, _ string) (string, error) {
	if u.uploadErr != nil {
		return "", u.uploadErr
	}
	ref := "photo-1.jpg"
	u.uploaded = append(u.uploaded, ref)
	return ref, nil
}

func (u *fakeUploader) PublicURL(ref string) string { return "https://media.example/" + ref }

func (u *fakeUploader) Remove(_ context.Context, ref string) error {
	u.removed = append(u.removed, ref)
	return nil
}

type fakeGeocoder struct {
	address string
	err     error
}

func (g *fakeGeocoder) Lookup(_ context.Context, _ geo.Coordinate) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.address, nil
}

type openGrants struct{}

func (openGrants) HasGrant(context.Context, string) (bool, error) { return false, nil }
func (openGrants) EnsureGrant(context.Context, string) error      { return nil }

func newTestWorkflow(store *fakeIssueStore, uploader Uploader, geocoder geo.Geocoder) (*Workflow, *authz.Principal) {
	gate := authz.NewGate(openGrants{}, "admin@city.example")
	resolver := geo.NewResolver(geocoder, nil)
	svc := issues.NewService(store, gate)
	citizen := &authz.Principal{ID: primitive.NewObjectID().Hex(), Email: "jane@city.example"}
	return NewWorkflow(gate, resolver, uploader, svc), citizen
}

func validSubmission() Draft {
	return Draft{
		Title:       "Deep pothole on Elm Street",
		Description: "Front axle deep, right before the crossing.",
		Category:    "pothole",
		Coordinate:  &geo.Coordinate{Lat: 12.34, Lng: 56.78},
	}
}

func TestSubmitRejectsAnonymous(t *testing.T) {
	store := &fakeIssueStore{}
	wf, _ := newTestWorkflow(store, nil, &fakeGeocoder{address: "Elm Street"})

	_, err := wf.Submit(context.Background(), validSubmission(), nil)

	var aerr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &aerr)
	assert.Empty(t, store.issues, "nothing persisted before authentication")
}

func TestSubmitRequiresCoordinate(t *testing.T) {
	wf, citizen := newTestWorkflow(&fakeIssueStore{}, nil, &fakeGeocoder{address: "Elm Street"})

	draft := validSubmission()
	draft.Coordinate = nil
	_, err := wf.Submit(context.Background(), draft, citizen)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "location", verr.Field)
}

func TestSubmitCreatesPendingIssueWithAddress(t *testing.T) {
	store := &fakeIssueStore{}
	wf, citizen := newTestWorkflow(store, nil, &fakeGeocoder{address: "Elm Street, Springfield"})

	issue, err := wf.Submit(context.Background(), validSubmission(), citizen)

	require.NoError(t, err)
	assert.Equal(t, models.Pending, issue.Status)
	assert.Equal(t, "Elm Street, Springfield", issue.Location)
	assert.Equal(t, 12.34, issue.Latitude)
	assert.Equal(t, 56.78, issue.Longitude)
}

func TestSubmitSurvivesGeocodingFailure(t *testing.T) {
	store := &fakeIssueStore{}
	wf, citizen := newTestWorkflow(store, nil, &fakeGeocoder{err: errors.New("nominatim down")})

	issue, err := wf.Submit(context.Background(), validSubmission(), citizen)

	require.NoError(t, err, "reverse geocoding is a convenience, never a hard requirement")
	assert.Equal(t, "12.340000, 56.780000", issue.Location)
}

func TestSubmitUploadFailureAborts(t *testing.T) {
	store := &fakeIssueStore{}
	uploader := &fakeUploader{uploadErr: errors.New("bucket unreachable")}
	wf, citizen := newTestWorkflow(store, uploader, &fakeGeocoder{address: "Elm Street"})

	draft := validSubmission()
	draft.Photo = []byte{0xff, 0xd8}
	draft.PhotoType = "image/jpeg"
	_, err := wf.Submit(context.Background(), draft, citizen)

	var uerr *apperrors.UploadError
	require.ErrorAs(t, err, &uerr)
	assert.Empty(t, store.issues, "no issue may reference a broken image")
}

func TestSubmitCleansUpUploadOnCreateFailure(t *testing.T) {
	store := &fakeIssueStore{insertErr: errors.New("write conflict")}
	uploader := &fakeUploader{}
	wf, citizen := newTestWorkflow(store, uploader, &fakeGeocoder{address: "Elm Street"})

	draft := validSubmission()
	draft.Photo = []byte{0xff, 0xd8}
	draft.PhotoType = "image/jpeg"
	_, err := wf.Submit(context.Background(), draft, citizen)

	require.Error(t, err)
	assert.Equal(t, uploader.uploaded, uploader.removed, "uploaded object must be cleaned up")
}

func TestSubmitWithPhotoSetsImageURL(t *testing.T) {
	store := &fakeIssueStore{}
	uploader := &fakeUploader{}
	wf, citizen := newTestWorkflow(store, uploader, &fakeGeocoder{address: "Elm Street"})

	draft := validSubmission()
	draft.Photo = []byte{0xff, 0xd8}
	draft.PhotoType = "image/jpeg"
	issue, err := wf.Submit(context.Background(), draft, citizen)

	require.NoError(t, err)
	require.NotNil(t, issue.ImageURL)
	assert.Equal(t, "https://media.example/photo-1.jpg", *issue.ImageURL)
	assert.Empty(t, uploader.removed)
}

// End-to-end resume: a rejected anonymous submission succeeds unchanged once
// the same draft is resubmitted by an authenticated principal.
func TestSubmitResumesAfterSignIn(t *testing.T) {
	store := &fakeIssueStore{}
	wf, citizen := newTestWorkflow(store, nil, &fakeGeocoder{err: errors.New("nominatim down")})

	draft := validSubmission()

	_, err := wf.Submit(context.Background(), draft, nil)
	var aerr *apperrors.AuthorizationError
	require.ErrorAs(t, err, &aerr)

	issue, err := wf.Submit(context.Background(), draft, citizen)
	require.NoError(t, err)
	assert.Equal(t, models.Pending, issue.Status)
	assert.NotEmpty(t, issue.Location)
}
