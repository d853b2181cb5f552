package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/config"
)

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

type fakeS3 struct {
	s3iface.S3API
	puts []*s3.PutObjectInput
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func upload(svc *StorageService, data []byte, name string) (*UploadResult, error) {
	header := &multipart.FileHeader{Filename: name, Size: int64(len(data))}
	return svc.UploadProductImage(context.Background(), 7, memFile{bytes.NewReader(data)}, header)
}

func TestUploadProductImage(t *testing.T) {
	svc, err := NewStorageService(config.AWSConfig{Region: "ap-south-1", S3Bucket: "shop-images"})
	require.NoError(t, err)

	_, err = upload(svc, pngHeader, "a.png")
	assert.ErrorIs(t, err, ErrStorageNotConfigured)

	fake := &fakeS3{}
	svc.s3Client = fake
	svc.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }

	result, err := upload(svc, pngHeader, "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/png", result.MimeType)
	assert.True(t, strings.HasPrefix(result.Key, "products/7/20240309_"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"), "extension follows the content")
	assert.Equal(t, "https://shop-images.s3.ap-south-1.amazonaws.com/"+result.Key, result.URL)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "image/png", aws.StringValue(fake.puts[0].ContentType))

	svc.cdnURL = "https://cdn.shop.test"
	result, err = upload(svc, pngHeader, "b.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.shop.test/"+result.Key, result.URL)
}

func TestUploadRejectsNonImages(t *testing.T) {
	svc, err := NewStorageService(config.AWSConfig{S3Bucket: "shop-images"})
	require.NoError(t, err)
	svc.s3Client = &fakeS3{}

	_, err = upload(svc, []byte("#!/bin/sh\necho hi\n"), "evil.png")
	assert.ErrorIs(t, err, ErrFileType)

	big := make([]byte, MaxProductImageSize+1)
	copy(big, pngHeader)
	_, err = upload(svc, big, "huge.png")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
