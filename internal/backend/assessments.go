package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
)

// UploadBodyImage submits a body image for analysis as a multipart upload. Analysis
// happens synchronously in the backend, so this call uses the long timeout.
func (c *Client) UploadBodyImage(ctx context.Context, token, assessmentId, filename, contentType string, data io.Reader) (*BodyAnalysis, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("content-disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("content-type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare multipart upload: %w", err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, fmt.Errorf("failed to buffer image data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart upload: %w", err)
	}

	var analysis BodyAnalysis
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        bodyImagePath(assessmentId),
		token:       token,
		body:        &buf,
		contentType: w.FormDataContentType(),
		long:        true,
	}, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// GetBodyAnalysis returns the analysis of an assessment's body image, or ErrNotFound
// if no image has been analyzed yet
func (c *Client) GetBodyAnalysis(ctx context.Context, token, assessmentId string) (*BodyAnalysis, error) {
	var analysis BodyAnalysis
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   bodyImagePath(assessmentId),
		token:  token,
	}, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func bodyImagePath(assessmentId string) string {
	return "/assessments/" + url.PathEscape(assessmentId) + "/body-image"
}
