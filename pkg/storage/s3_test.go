package storage_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstream/shelfstream/pkg/storage"
)

// fakeS3 is an in-memory S3Client good enough for store semantics.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var contents []types.Object
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	return &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: aws.Bool(false),
	}, nil
}

func (f *fakeS3) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, obj := range params.Delete.Objects {
		delete(f.objects, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func newS3Store(t *testing.T, client storage.S3Client) *storage.S3Store {
	t.Helper()
	store, err := storage.NewS3Store(context.Background(),
		storage.Config{
			MaxFileSize:       10 << 20,
			AllowedExtensions: []string{".jpg", ".png"},
		},
		storage.S3Config{Bucket: "covers", KeyPrefix: "uploads"},
		storage.WithS3Client(client),
	)
	require.NoError(t, err)
	return store
}

func TestS3Store_SaveLoadDelete(t *testing.T) {
	t.Parallel()

	client := newFakeS3()
	store := newS3Store(t, client)

	content := []byte("jpeg bytes")
	name, err := store.Save(context.Background(), bytes.NewReader(content), int64(len(content)), ".jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	rc, size, err := store.Load(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), size)

	ok, err := store.Delete(context.Background(), name)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Delete(context.Background(), name)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3Store_Validation(t *testing.T) {
	t.Parallel()

	client := newFakeS3()
	store := newS3Store(t, client)

	t.Run("oversize payload never reaches the bucket", func(t *testing.T) {
		_, err := store.Save(context.Background(), bytes.NewReader([]byte("x")), 11<<20, ".jpg")
		require.ErrorIs(t, err, storage.ErrFileTooLarge)
		assert.Empty(t, client.objects)
	})

	t.Run("disallowed extension never reaches the bucket", func(t *testing.T) {
		_, err := store.Save(context.Background(), bytes.NewReader([]byte("x")), 1, ".exe")
		require.ErrorIs(t, err, storage.ErrExtensionNotAllowed)
		assert.Empty(t, client.objects)
	})
}

func TestS3Store_Load_NotFound(t *testing.T) {
	t.Parallel()

	store := newS3Store(t, newFakeS3())
	_, _, err := store.Load(context.Background(), "missing.jpg")
	require.ErrorIs(t, err, storage.ErrFileNotFound)
}

func TestS3Store_RejectsHostileNames(t *testing.T) {
	t.Parallel()

	store := newS3Store(t, newFakeS3())
	for _, name := range []string{"", "..", "a/b.jpg", `a\b.jpg`} {
		_, _, err := store.Load(context.Background(), name)
		assert.ErrorIs(t, err, storage.ErrInvalidName, "name %q", name)
	}
}

func TestS3Store_Purge(t *testing.T) {
	t.Parallel()

	client := newFakeS3()
	store := newS3Store(t, client)

	for range 3 {
		_, err := store.Save(context.Background(), bytes.NewReader([]byte("x")), 1, ".png")
		require.NoError(t, err)
	}
	require.Len(t, client.objects, 3)

	require.NoError(t, store.Purge(context.Background()))
	assert.Empty(t, client.objects)
}
