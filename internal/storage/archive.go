// Package storage archives uploaded body images to an S3-compatible bucket
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awsSession "github.com/aws/aws-sdk-go/aws/session"
	awsS3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// ArchiveClient stores files in the bucket where we keep a copy of every body image
// that users submit for analysis
type ArchiveClient interface {
	Upload(ctx context.Context, key string, contentType string, data io.ReadSeeker) (string, error)
}

// Config identifies a DigitalOcean Spaces bucket (e.g. 'fitplate-body-images')
type Config struct {
	AccessKeyId    string
	SecretKey      string
	EndpointOrigin string
	RegionName     string
	BucketName     string
}

// Enabled reports whether enough of the config is set to connect to a bucket
func (c Config) Enabled() bool {
	return c.EndpointOrigin != "" && c.BucketName != ""
}

// archiveClient implements ArchiveClient using the S3 API
type archiveClient struct {
	s3         *awsS3.S3
	bucketName string
	baseUrl    string
}

// NewArchiveClient initializes an ArchiveClient that uploads to a Spaces bucket
func NewArchiveClient(c Config) (ArchiveClient, error) {
	return newArchiveClient(
		c,
		fmt.Sprintf("https://%s", c.EndpointOrigin),
		fmt.Sprintf("https://%s.%s", c.BucketName, c.EndpointOrigin),
		false,
	)
}

func newArchiveClient(c Config, endpoint string, baseUrl string, forcePathStyle bool) (*archiveClient, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(c.AccessKeyId, c.SecretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(c.RegionName),
		S3ForcePathStyle: aws.Bool(forcePathStyle),
	}
	session, err := awsSession.NewSession(config)
	if err != nil {
		return nil, err
	}
	return &archiveClient{
		s3:         awsS3.New(session),
		bucketName: c.BucketName,
		baseUrl:    baseUrl,
	}, nil
}

// Upload stores a file in the bucket and returns its URL. Body images are private, so
// the URL is only accessible with bucket credentials.
func (c *archiveClient) Upload(ctx context.Context, key string, contentType string, data io.ReadSeeker) (string, error) {
	_, err := c.s3.PutObjectWithContext(ctx, &awsS3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(key),
		Body:        data,
		ACL:         aws.String(awsS3.ObjectCannedACLPrivate),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", c.baseUrl, key), nil
}

// FormatBodyImageKey returns a unique object key for a body image submitted for the
// given assessment
func FormatBodyImageKey(assessmentId string, contentType string) string {
	return path.Join("body-images", sanitize(assessmentId), uuid.NewString()+extension(contentType))
}

func extension(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
