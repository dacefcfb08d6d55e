package assignment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	// ErrMissingProof is returned when delivery is reported without a proof of delivery.
	ErrMissingProof = errors.New("proof of delivery is missing")
	// ErrCompletionIsNotConstructed is returned when using a zero-value Completion.
	ErrCompletionIsNotConstructed = errors.New("Completion must be created via NewCompletion constructor")
)

// Completion holds the artifacts recorded when an assignment is delivered.
type Completion struct {
	proofURL string
	notes    string
	rating   *int
	guard    guard.ConstructorGuard
}

// NewCompletion validates the delivery artifacts.
//
// Parameters:
//   - proofURL: absolute http(s) URL of the proof of delivery, mandatory
//   - notes: free-form delivery notes, may be empty
//   - rating: optional customer rating in [MinRating..MaxRating]
//
// Returns ErrMissingProof when proofURL is blank.
func NewCompletion(proofURL, notes string, rating *int) (Completion, error) {
	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return Completion{}, ErrMissingProof
	}

	u, err := url.Parse(proofURL)
	if err != nil {
		return Completion{}, errs.NewValueIsInvalidErrorWithCause("proofOfDeliveryUrl", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Completion{}, errs.NewValueIsInvalidErrorWithCause("proofOfDeliveryUrl",
			fmt.Errorf("%q is not an absolute http(s) url", proofURL))
	}

	if rating != nil && (*rating < MinRating || *rating > MaxRating) {
		return Completion{}, errs.NewValueIsOutOfRangeError("customerRating", *rating, MinRating, MaxRating)
	}

	c := Completion{
		proofURL: proofURL,
		notes:    strings.TrimSpace(notes),
		guard:    guard.NewConstructorGuard(),
	}
	if rating != nil {
		r := *rating
		c.rating = &r
	}
	return c, nil
}

func (c Completion) Validate() error {
	return c.guard.Validate(ErrCompletionIsNotConstructed)
}

func (c Completion) ProofURL() string {
	return c.proofURL
}

func (c Completion) Notes() string {
	return c.notes
}

// Rating returns the customer rating, or nil when none was given.
func (c Completion) Rating() *int {
	if c.rating == nil {
		return nil
	}
	r := *c.rating
	return &r
}
