package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

func TestPutWritesBucketKeyAndBody(t *testing.T) {
	putter := &fakePutter{}
	archive := NewAwsS3WithClient(putter, "plans-bucket")

	if err := archive.Put(context.Background(), "plans/1/2024-06-12/run.json", []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if aws.ToString(putter.input.Bucket) != "plans-bucket" {
		t.Fatalf("bucket = %q", aws.ToString(putter.input.Bucket))
	}
	if aws.ToString(putter.input.Key) != "plans/1/2024-06-12/run.json" {
		t.Fatalf("key = %q", aws.ToString(putter.input.Key))
	}
	if string(putter.body) != "[]" {
		t.Fatalf("body = %q", putter.body)
	}
}

func TestPutWrapsClientError(t *testing.T) {
	boom := errors.New("boom")
	archive := NewAwsS3WithClient(&fakePutter{err: boom}, "b")

	if err := archive.Put(context.Background(), "k", nil); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewAwsS3WithoutBucket(t *testing.T) {
	t.Setenv("AWS_S3_BUCKET", "")

	archive, err := NewAwsS3(context.Background())
	if err != nil || archive != nil {
		t.Fatalf("expected nil archive, got %v %v", archive, err)
	}
}
