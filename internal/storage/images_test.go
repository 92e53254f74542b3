package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3Client struct {
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMockS3() *mockS3Client {
	return &mockS3Client{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = body
	if input.ContentType != nil {
		m.contentTypes[*input.Key] = *input.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &notFoundError{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

type notFoundError struct{}

func (e *notFoundError) Error() string { return "NoSuchKey: key not found" }

func TestImageStore_ProfileImageRoundTrip(t *testing.T) {
	mock := newMockS3()
	store := NewImageStore(mock, "clinic-images", nil)

	key, err := store.PutProfileImage(context.Background(), "p002", "image/png", []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "pets/p002/profile.png", key)
	assert.Equal(t, "image/png", mock.contentTypes[key])

	data, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestImageStore_ProfileImageReplaced(t *testing.T) {
	mock := newMockS3()
	store := NewImageStore(mock, "clinic-images", nil)

	_, err := store.PutProfileImage(context.Background(), "p002", "image/png", []byte("old"))
	require.NoError(t, err)
	key, err := store.PutProfileImage(context.Background(), "p002", "image/png", []byte("new"))
	require.NoError(t, err)

	data, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestImageStore_RecordAttachmentKeysNeverCollide(t *testing.T) {
	mock := newMockS3()
	store := NewImageStore(mock, "clinic-images", nil)

	first, err := store.PutRecordAttachment(context.Background(), "p003", "xray.jpg", "image/jpeg", []byte("a"))
	require.NoError(t, err)
	second, err := store.PutRecordAttachment(context.Background(), "p003", "xray.jpg", "image/jpeg", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Contains(t, first, "pets/p003/records/")
	assert.Contains(t, first, "xray.jpg")
}

func TestImageStore_StripsPathFromFilename(t *testing.T) {
	mock := newMockS3()
	store := NewImageStore(mock, "clinic-images", nil)

	key, err := store.PutRecordAttachment(context.Background(), "p001", "../../etc/passwd", "image/jpeg", []byte("x"))
	require.NoError(t, err)
	assert.NotContains(t, key, "..")
	assert.Contains(t, key, "passwd")
}

func TestImageStore_DisabledWithoutBucket(t *testing.T) {
	store := NewImageStore(newMockS3(), "", nil)

	assert.False(t, store.Enabled())
	_, err := store.PutProfileImage(context.Background(), "p001", "image/png", []byte("x"))
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = store.Get(context.Background(), "pets/p001/profile.png")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestImageStore_GetMissingKey(t *testing.T) {
	store := NewImageStore(newMockS3(), "clinic-images", nil)

	_, err := store.Get(context.Background(), "pets/none/profile.png")
	require.Error(t, err)
}
