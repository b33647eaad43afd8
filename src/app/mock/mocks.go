package appmock

import (
	"context"
	"io"

	"eventserv/src/app"

	"github.com/stretchr/testify/mock"
)

// Testify doubles for the external collaborators, so handler and client
// tests run without a geocoding service, mail provider, OIDC provider or
// object store.

type Geocoder struct {
	mock.Mock
}

func (m *Geocoder) Geocode(ctx context.Context, address string) (*app.Coordinates, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*app.Coordinates), args.Error(1)
}

type Mailer struct {
	mock.Mock
}

func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}

type TokenVerifier struct {
	mock.Mock
}

func (m *TokenVerifier) Verify(ctx context.Context, rawToken string) (uint, error) {
	args := m.Called(ctx, rawToken)
	return args.Get(0).(uint), args.Error(1)
}

type ImageStorage struct {
	mock.Mock
}

func (m *ImageStorage) UploadFile(ctx context.Context, path string, object io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, path, object, size, contentType)
	return args.Error(0)
}
