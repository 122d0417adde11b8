package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/farmgate-identity/internal/apierror"
)

func TestHandleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       error
		wantCode codes.Code
		wantMsg  string
	}{
		{
			name:     "unauthenticated",
			in:       apierror.NewErrUnauthenticated("Unauthorized - Access Token Expired"),
			wantCode: codes.Unauthenticated,
			wantMsg:  "Unauthorized - Access Token Expired",
		},
		{
			name:     "forbidden",
			in:       apierror.NewErrForbidden("Forbidden - Admins Only"),
			wantCode: codes.PermissionDenied,
			wantMsg:  "Forbidden - Admins Only",
		},
		{
			name:     "internal cause hidden",
			in:       apierror.NewErrInternalServerError(errors.New("db password leaked")),
			wantCode: codes.Internal,
			wantMsg:  "Internal server error",
		},
		{
			name:     "other -> Internal",
			in:       errors.New("boom"),
			wantCode: codes.Internal,
			wantMsg:  "Internal server error",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st, ok := status.FromError(HandleError(tt.in))
			assert.True(t, ok)
			assert.Equal(t, tt.wantCode, st.Code())
			assert.Equal(t, tt.wantMsg, st.Message())
		})
	}
}
