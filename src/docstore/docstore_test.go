package docstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"git.nurpath.academy/nurpath/portal/src/authoring"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	m       sync.Mutex
	buckets map[string]map[string][]byte

	failPuts int // number of upcoming PutObject calls that fail
	puts     int
	creates  int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: map[string]map[string][]byte{}}
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.m.Lock()
	defer f.m.Unlock()

	bucket, ok := f.buckets[*params.Bucket]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchBucket"}
	}
	obj, ok := bucket[*params.Key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.m.Lock()
	defer f.m.Unlock()

	f.puts++
	if f.failPuts > 0 {
		f.failPuts--
		return nil, &smithy.GenericAPIError{Code: "SlowDown"}
	}
	bucket, ok := f.buckets[*params.Bucket]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchBucket"}
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	bucket[*params.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.m.Lock()
	defer f.m.Unlock()

	f.creates++
	if _, ok := f.buckets[*params.Bucket]; ok {
		return nil, &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}
	}
	f.buckets[*params.Bucket] = map[string][]byte{}
	return &s3.CreateBucketOutput{}, nil
}

func newTestClient(api ObjectAPI) *Client {
	c := New(api, "portal-studio", "studio/state.json")
	c.MinBackoff = time.Millisecond
	c.MaxBackoff = 5 * time.Millisecond
	return c
}

func TestLoadMissing(t *testing.T) {
	c := newTestClient(newFakeS3())
	_, found, err := c.Load(context.Background())
	assert.Nil(t, err)
	assert.False(t, found)
}

func TestSaveAndLoad(t *testing.T) {
	api := newFakeS3()
	c := newTestClient(api)
	ctx := context.Background()

	state := authoring.SeedState(authoring.NewSequenceGenerator("seed"))
	require.Nil(t, c.Save(ctx, state))
	assert.Equal(t, 1, api.creates, "the bucket should have been created on first save")

	loaded, found, err := c.Load(ctx)
	require.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, state, loaded)

	t.Run("overwrites", func(t *testing.T) {
		next := authoring.SetCoursePhase(state, state.Courses[0].ID, authoring.PhaseRevision)
		require.Nil(t, c.Save(ctx, next))
		loaded, _, err := c.Load(ctx)
		require.Nil(t, err)
		assert.Equal(t, authoring.PhaseRevision, loaded.Courses[0].Phase)
		assert.Equal(t, 1, api.creates)
	})
}

func TestSaveRetries(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers from transient failures", func(t *testing.T) {
		api := newFakeS3()
		api.buckets["portal-studio"] = map[string][]byte{}
		api.failPuts = 2
		c := newTestClient(api)

		assert.Nil(t, c.Save(ctx, authoring.State{}))
		assert.Equal(t, 3, api.puts)
	})
	t.Run("gives up", func(t *testing.T) {
		api := newFakeS3()
		api.buckets["portal-studio"] = map[string][]byte{}
		api.failPuts = 100
		c := newTestClient(api)
		c.MaxAttempts = 3

		err := c.Save(ctx, authoring.State{})
		var apiErr smithy.APIError
		if assert.True(t, errors.As(err, &apiErr)) {
			assert.Equal(t, "SlowDown", apiErr.ErrorCode())
		}
		assert.Equal(t, 3, api.puts)
	})
	t.Run("stops when the context ends", func(t *testing.T) {
		api := newFakeS3()
		api.buckets["portal-studio"] = map[string][]byte{}
		api.failPuts = 100
		c := newTestClient(api)
		c.MaxAttempts = 1000
		c.MinBackoff = time.Hour
		c.MaxBackoff = time.Hour

		ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		assert.NotNil(t, c.Save(ctx, authoring.State{}))
		assert.Equal(t, 1, api.puts)
	})
}

func TestDecode(t *testing.T) {
	_, err := Decode([]byte(`{"version": 99, "state": {"courses": []}}`))
	assert.NotNil(t, err)

	_, err = Decode([]byte(`{`))
	assert.NotNil(t, err)

	raw, err := Encode(authoring.State{}, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	require.Nil(t, err)
	assert.Contains(t, string(raw), `"savedAt": "2024-09-01T00:00:00Z"`)
	state, err := Decode(raw)
	assert.Nil(t, err)
	assert.Equal(t, authoring.State{}, state)
}
