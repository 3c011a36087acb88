// Package report orchestrates the submit operation: capability check,
// location requirement, media upload, reverse geocoding, and issue creation.
// From the caller's perspective it either fully succeeds or leaves nothing
// behind.
package report

import (
	"context"
	"errors"
	"log"

	"citizenreport/apperrors"
	"citizenreport/models"
	"citizenreport/services/authz"
	"citizenreport/services/geo"
	"citizenreport/services/issues"
)

// Uploader is the object storage collaborator for photos.
type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	PublicURL(ref string) string
	Remove(ctx context.Context, ref string) error
}

// Draft is a submission as entered by the user. The coordinate may come from
// a device fix or a manual map pin; the workflow does not care which.
type Draft struct {
	Title       string
	Description string
	Category    string
	Coordinate  *geo.Coordinate
	Photo       []byte
	PhotoType   string
}

type Workflow struct {
	Gate     *authz.Gate
	Resolver *geo.Resolver
	Uploader Uploader // nil when media storage is not configured
	Issues   *issues.Service
}

func NewWorkflow(gate *authz.Gate, resolver *geo.Resolver, uploader Uploader, issueService *issues.Service) *Workflow {
	return &Workflow{Gate: gate, Resolver: resolver, Uploader: uploader, Issues: issueService}
}

// Submit runs the submission pipeline. Each step gates the next:
//
//  1. the principal must hold the create capability            (authorization)
//  2. a resolved coordinate must be present                    (validation)
//  3. an attached photo is uploaded first; failure aborts      (upload)
//  4. the coordinate is reverse-geocoded, soft-failing to a
//     formatted "lat, lng" display string
//  5. the issue is created; if that fails after a successful
//     upload the object is removed so no partial state remains
func (w *Workflow) Submit(ctx context.Context, draft Draft, p *authz.Principal) (*models.Issue, error) {
	role := w.Gate.Classify(ctx, p)
	if !authz.CanCreateIssue(role) {
		return nil, apperrors.Authorization("sign in to report an issue")
	}

	if draft.Coordinate == nil {
		return nil, apperrors.Validation("location", "select a location on the map")
	}

	var imageURL *string
	var uploadedRef string
	if len(draft.Photo) > 0 {
		if w.Uploader == nil {
			return nil, &apperrors.UploadError{Err: errMediaUnavailable}
		}
		ref, err := w.Uploader.Upload(ctx, draft.Photo, draft.PhotoType)
		if err != nil {
			return nil, &apperrors.UploadError{Err: err}
		}
		uploadedRef = ref
		url := w.Uploader.PublicURL(ref)
		imageURL = &url
	}

	address := w.Resolver.ReverseGeocode(ctx, *draft.Coordinate)
	if address.Degraded {
		log.Printf("report: geocoding degraded for (%.6f, %.6f)", draft.Coordinate.Lat, draft.Coordinate.Lng)
	}

	issue, err := w.Issues.Create(ctx, issues.Draft{
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Location:    address.Display,
		Latitude:    &draft.Coordinate.Lat,
		Longitude:   &draft.Coordinate.Lng,
		ImageURL:    imageURL,
	}, p)
	if err != nil {
		if uploadedRef != "" {
			// Best-effort cleanup: never leave an orphaned photo behind a
			// failed insert.
			if rmErr := w.Uploader.Remove(ctx, uploadedRef); rmErr != nil {
				log.Printf("report: removing orphaned upload %s failed: %v", uploadedRef, rmErr)
			}
		}
		return nil, err
	}
	return issue, nil
}

var errMediaUnavailable = errors.New("media storage is not configured")
