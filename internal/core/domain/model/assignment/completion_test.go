package assignment_test

import (
	"testing"

	"dispatch/internal/core/domain/model/assignment"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewCompletion(t *testing.T) {
	tests := []struct {
		name    string
		proof   string
		rating  *int
		wantErr error
	}{
		{name: "proof and rating", proof: "https://cdn.example.com/pod/1.jpg", rating: ptr(5)},
		{name: "proof only", proof: "http://cdn.example.com/pod/2.jpg"},
		{name: "missing proof", proof: "  ", wantErr: assignment.ErrMissingProof},
		{name: "relative url", proof: "/pod/3.jpg", wantErr: errs.ErrValueIsInvalid},
		{name: "unsupported scheme", proof: "ftp://cdn.example.com/pod.jpg", wantErr: errs.ErrValueIsInvalid},
		{name: "rating too low", proof: "https://cdn.example.com/pod.jpg", rating: ptr(0), wantErr: errs.ErrValueIsOutOfRange},
		{name: "rating too high", proof: "https://cdn.example.com/pod.jpg", rating: ptr(6), wantErr: errs.ErrValueIsOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := assignment.NewCompletion(tt.proof, " left at gate ", tt.rating)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, c.Validate())
			assert.Equal(t, tt.proof, c.ProofURL())
			assert.Equal(t, "left at gate", c.Notes())
			assert.Equal(t, tt.rating, c.Rating())
		})
	}
}
