package objectstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPutObject struct {
	mock.Mock
}

func (m *mockPutObject) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func TestUploader_Upload(t *testing.T) {
	api := new(mockPutObject)
	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return *in.Bucket == "reports" &&
			*in.Key == "exports/backtest-summary-1.csv" &&
			*in.ContentType == "text/csv" &&
			string(body) == "a,b\n"
	})).Return(&s3.PutObjectOutput{}, nil)

	u, err := NewUploader(api, "reports", "/exports/")
	require.NoError(t, err)

	uri, err := u.Upload(context.Background(), "backtest-summary-1.csv", "text/csv", []byte("a,b\n"))

	require.NoError(t, err)
	assert.Equal(t, "s3://reports/exports/backtest-summary-1.csv", uri)
	api.AssertExpectations(t)
}

func TestUploader_Errors(t *testing.T) {
	api := new(mockPutObject)
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	u, err := NewUploader(api, "reports", "")
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), "x.csv", "text/csv", nil)
	assert.ErrorContains(t, err, "access denied")

	_, err = u.Upload(context.Background(), "", "text/csv", nil)
	assert.Error(t, err)

	_, err = NewUploader(api, "", "")
	assert.Error(t, err)
	_, err = NewUploader(nil, "reports", "")
	assert.Error(t, err)
}
