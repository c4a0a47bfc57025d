/*
Package docstore keeps the studio's authoring document as a single JSON object
in an S3-compatible bucket.
*/
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"git.nurpath.academy/nurpath/portal/src/authoring"
	"git.nurpath.academy/nurpath/portal/src/config"
	"git.nurpath.academy/nurpath/portal/src/logging"
	"git.nurpath.academy/nurpath/portal/src/oops"
	"git.nurpath.academy/nurpath/portal/src/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/jpillora/backoff"
)

// The subset of *s3.Client the store needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

const documentVersion = 1

type document struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	State   authoring.State `json:"state"`
}

type Client struct {
	api    ObjectAPI
	bucket string
	key    string

	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
}

var _ authoring.Persister = &Client{}

func New(api ObjectAPI, bucket, key string) *Client {
	return &Client{
		api:         api,
		bucket:      bucket,
		key:         key,
		MaxAttempts: 5,
		MinBackoff:  200 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
	}
}

// Builds an S3 client from the DocStore config.
func NewFromConfig(cfg config.DocStoreConfig) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		})))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, oops.New(err, "failed to load S3 config for the docstore")
	}
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return New(api, cfg.Bucket, cfg.Key), nil
}

func (c *Client) Bucket() string { return c.bucket }
func (c *Client) Key() string    { return c.key }

// Reads the document. A missing key or bucket means nothing has been saved
// yet and is reported as found=false, not as an error.
func (c *Client) Load(ctx context.Context) (authoring.State, bool, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &c.bucket,
		Key:    &c.key,
	})
	if err != nil {
		if code := apiErrorCode(err); code == "NoSuchKey" || code == "NoSuchBucket" || code == "NotFound" {
			return authoring.State{}, false, nil
		}
		return authoring.State{}, false, oops.New(err, "failed to fetch authoring document s3://%s/%s", c.bucket, c.key)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return authoring.State{}, false, oops.New(err, "failed to read authoring document")
	}

	state, err := Decode(raw)
	if err != nil {
		return authoring.State{}, false, err
	}
	return state, true, nil
}

/*
Writes the document, creating the bucket if it doesn't exist. Failed writes
are retried with exponential backoff until MaxAttempts is reached or ctx is
done.
*/
func (c *Client) Save(ctx context.Context, state authoring.State) error {
	body, err := Encode(state, time.Now())
	if err != nil {
		return err
	}

	boff := backoff.Backoff{
		Min:    c.MinBackoff,
		Max:    c.MaxBackoff,
		Factor: 2,
		Jitter: true,
	}
	createdBucket := false

	var lastErr error
	for attempt := 1; attempt <= utils.IntMax(c.MaxAttempts, 1); attempt++ {
		lastErr = c.put(ctx, body)
		if lastErr == nil {
			return nil
		}

		if apiErrorCode(lastErr) == "NoSuchBucket" && !createdBucket {
			createdBucket = true
			_, err := c.api.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: &c.bucket,
			})
			if err != nil && apiErrorCode(err) != "BucketAlreadyOwnedByYou" {
				return oops.New(err, "failed to create docstore bucket %s", c.bucket)
			}
			attempt--
			continue
		}

		if ctx.Err() != nil {
			break
		}

		wait := boff.Duration()
		logging.ExtractLogger(ctx).Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Dur("retrying after", wait).
			Msg("failed to save authoring document")
		if err := utils.SleepContext(ctx, wait); err != nil {
			break
		}
	}

	return oops.New(lastErr, "failed to save authoring document s3://%s/%s", c.bucket, c.key)
}

func (c *Client) put(ctx context.Context, body []byte) error {
	contentType := "application/json"
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &c.key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	return err
}

func Encode(state authoring.State, savedAt time.Time) ([]byte, error) {
	raw, err := json.MarshalIndent(document{
		Version: documentVersion,
		SavedAt: savedAt.UTC(),
		State:   state,
	}, "", "  ")
	if err != nil {
		return nil, oops.New(err, "failed to encode authoring document")
	}
	return raw, nil
}

func Decode(raw []byte) (authoring.State, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return authoring.State{}, oops.New(err, "authoring document is not valid JSON")
	}
	if doc.Version != documentVersion {
		return authoring.State{}, oops.New(nil, "unsupported authoring document version %d", doc.Version)
	}
	return doc.State, nil
}

func apiErrorCode(err error) string {
	var apiError smithy.APIError
	if errors.As(err, &apiError) {
		return apiError.ErrorCode()
	}
	return ""
}
