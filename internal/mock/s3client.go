package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
)

var (
	_ awsclient.S3Client    = (*S3Client)(nil)
	_ awsclient.S3Presigner = (*S3Client)(nil)
)

// S3Client is a mock implementation of awsclient.S3Client and awsclient.S3Presigner.
// Objects are stored under "bucket/key".
type S3Client struct {
	mu      sync.RWMutex
	Files   map[string][]byte
	Deleted []string
	fail    map[string]error
}

// NewS3Client creates an empty mock.
func NewS3Client() *S3Client {
	return &S3Client{
		Files: make(map[string][]byte),
		fail:  make(map[string]error),
	}
}

// Put stores an object as if the browser had uploaded it.
func (m *S3Client) Put(bucket, key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Files[bucket+"/"+key] = body
}

// Has reports whether an object exists.
func (m *S3Client) Has(bucket, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.Files[bucket+"/"+key]

	return ok
}

// FailNext makes the next call of op (e.g. "DeleteObject") return err.
func (m *S3Client) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fail[op] = err
}

// failed returns an injected failure. Callers must hold m.mu.
func (m *S3Client) failed(op string) error {
	if err, ok := m.fail[op]; ok {
		delete(m.fail, op)

		return err
	}

	return nil
}

// HeadObject implements awsclient.S3Client.
func (m *S3Client) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failed("HeadObject"); err != nil {
		return nil, err
	}

	body, ok := m.Files[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{Message: aws.String("Not Found")}
	}

	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(body)))}, nil
}

// GetObject implements awsclient.S3Client. Supports "bytes=start-end" ranges.
func (m *S3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failed("GetObject"); err != nil {
		return nil, err
	}

	body, ok := m.Files[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}

	if r := aws.ToString(params.Range); r != "" {
		start, end, err := parseRange(r, len(body))
		if err != nil {
			return nil, err
		}

		body = body[start:end]
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func parseRange(r string, size int) (int, int, error) {
	spec, ok := strings.CutPrefix(r, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("mock: unsupported range %q", r) //nolint:err113
	}

	from, to, _ := strings.Cut(spec, "-")

	start, err := strconv.Atoi(from)
	if err != nil {
		return 0, 0, fmt.Errorf("mock: bad range %q: %w", r, err)
	}

	end, err := strconv.Atoi(to)
	if err != nil {
		return 0, 0, fmt.Errorf("mock: bad range %q: %w", r, err)
	}

	end = min(end+1, size)
	start = min(start, end)

	return start, end, nil
}

// DeleteObject implements awsclient.S3Client.
func (m *S3Client) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failed("DeleteObject"); err != nil {
		return nil, err
	}

	k := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	delete(m.Files, k)
	m.Deleted = append(m.Deleted, k)

	return &s3.DeleteObjectOutput{}, nil
}

// PresignPutObject implements awsclient.S3Presigner with a fake but well formed URL.
func (m *S3Client) PresignPutObject(_ context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failed("PresignPutObject"); err != nil {
		return nil, err
	}

	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	q := url.Values{}
	q.Set("X-Amz-Expires", strconv.Itoa(int(opts.Expires/time.Second)))
	q.Set("X-Amz-SignedHeaders", "content-type;host")

	u := url.URL{
		Scheme:   "https",
		Host:     aws.ToString(params.Bucket) + ".s3.mock.local",
		Path:     "/" + aws.ToString(params.Key),
		RawQuery: q.Encode(),
	}

	header := http.Header{}
	header.Set("Content-Type", aws.ToString(params.ContentType))

	return &v4.PresignedHTTPRequest{URL: u.String(), Method: http.MethodPut, SignedHeader: header}, nil
}
