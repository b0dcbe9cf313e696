package courseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fitforge/fitforge-web/internal/models"
	"github.com/fitforge/fitforge-web/pkg/httpclient"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/fitforge/fitforge-web/pkg/metrics"
	"github.com/fitforge/fitforge-web/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// Client talks to the course API. It never retries and never caches: every
// call reads current server state. Identical reads that overlap in time share
// one in-flight request.
type Client struct {
	baseURL    string
	httpClient httpclient.Client
	reads      singleflight.Group
}

// New creates a client for baseURL (a trailing slash is ignored)
func New(baseURL string, httpClient httpclient.Client) *Client {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type request struct {
	op          operation
	path        string
	token       string
	body        []byte
	bodyStream  io.Reader
	contentType string
	header      http.Header
}

type response struct {
	status int
	body   []byte
}

// Signup registers an account. The API answers with a token for auto-login.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.TokenResponse, error) {
	var out models.TokenResponse
	if err := c.sendJSON(ctx, opSignup, "/signup", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges email and password for a token
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	var out models.TokenResponse
	if err := c.sendJSON(ctx, opLogin, "/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminLogin exchanges admin credentials for a token carrying the admin role
func (c *Client) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.TokenResponse, error) {
	var out models.TokenResponse
	if err := c.sendJSON(ctx, opAdminLogin, "/admin/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCourses returns the whole catalogue
func (c *Client) ListCourses(ctx context.Context, token string) ([]models.Course, error) {
	var out []models.Course
	if err := c.read(ctx, opListCourses, "/courses", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCourse returns one course
func (c *Client) GetCourse(ctx context.Context, token, courseID string) (*models.Course, error) {
	var out models.Course
	if err := c.read(ctx, opGetCourse, "/courses/"+url.PathEscape(courseID), token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCourse publishes a course as the token's instructor
func (c *Client) CreateCourse(ctx context.Context, token string, req models.CreateCourseRequest) (*models.CreateCourseResponse, error) {
	var out models.CreateCourseResponse
	if err := c.sendJSON(ctx, opCreateCourse, "/create-course", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadVideo streams file as the multipart field "file"
func (c *Client) UploadVideo(ctx context.Context, token, filename string, file io.Reader) (*models.UploadVideoResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := c.send(ctx, request{
		op:          opUploadVideo,
		path:        "/upload-video",
		token:       token,
		bodyStream:  pr,
		contentType: mw.FormDataContentType(),
	})
	// Unblocks the writer if the request failed before draining the pipe
	_ = pr.Close()
	if err != nil {
		return nil, err
	}

	var out models.UploadVideoResponse
	if err := decode(opUploadVideo, resp, &out); err != nil {
		return nil, err
	}
	if out.VideoURL == "" {
		return nil, fmt.Errorf("%w: upload returned no video_url", ErrUnexpectedResponse)
	}
	return &out, nil
}

// PurchaseCourse buys a course with the account balance. A non-empty
// idempotencyKey is forwarded so the API can collapse repeated submissions.
func (c *Client) PurchaseCourse(ctx context.Context, token, courseID, idempotencyKey string) (*models.PurchaseResponse, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.send(ctx, request{
		op:     opPurchaseCourse,
		path:   "/courses/" + url.PathEscape(courseID) + "/purchase",
		token:  token,
		header: header,
	})
	if err != nil {
		return nil, err
	}

	var out models.PurchaseResponse
	if err := decode(opPurchaseCourse, resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentUser returns the token owner's account
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.read(ctx, opCurrentUser, "/users/me", token, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInstructors returns every instructor account (admin only)
func (c *Client) ListInstructors(ctx context.Context, token string) ([]models.Instructor, error) {
	var out []models.Instructor
	if err := c.read(ctx, opListInstructors, "/admin/instructors", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyInstructor sets an instructor's verified flag (admin only)
func (c *Client) VerifyInstructor(ctx context.Context, token, instructorID string, verify bool) (*models.Instructor, error) {
	var out models.Instructor
	path := "/admin/instructors/" + url.PathEscape(instructorID) + "/verify"
	if err := c.sendJSON(ctx, opVerifyInstructor, path, token, models.VerifyInstructorRequest{Verify: verify}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReviews returns a course's reviews, newest first as ordered by the API
func (c *Client) ListReviews(ctx context.Context, token, courseID string) ([]models.Review, error) {
	var raw json.RawMessage
	if err := c.read(ctx, opListReviews, "/courses/"+url.PathEscape(courseID)+"/reviews", token, &raw); err != nil {
		return nil, err
	}

	// Both {"reviews": [...]} and a bare array are accepted
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []models.Review
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
		}
		return list, nil
	}

	var envelope models.ReviewList
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if envelope.Reviews == nil {
		envelope.Reviews = []models.Review{}
	}
	return envelope.Reviews, nil
}

// CreateReview posts a review for a purchased course
func (c *Client) CreateReview(ctx context.Context, token, courseID string, req models.SubmitReviewRequest) (*models.SubmitReviewResponse, error) {
	var out models.SubmitReviewResponse
	path := "/courses/" + url.PathEscape(courseID) + "/reviews"
	if err := c.sendJSON(ctx, opCreateReview, path, token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InstructorCourses returns the token owner's courses with their reviews
func (c *Client) InstructorCourses(ctx context.Context, token string) ([]models.Course, error) {
	var out []models.Course
	if err := c.read(ctx, opInstructorCourses, "/instructor/courses", token, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks that the API answers at all
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, request{op: opPing, path: "/"})
	if err != nil {
		return err
	}
	return decode(opPing, resp, nil)
}

func (c *Client) sendJSON(ctx context.Context, op operation, path, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", op.name, err)
	}

	resp, err := c.send(ctx, request{
		op:          op,
		path:        path,
		token:       token,
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	return decode(op, resp, out)
}

// read performs a GET, joining an identical request already in flight.
// The shared request runs detached from any single caller's cancellation;
// each caller still stops waiting when its own context ends.
func (c *Client) read(ctx context.Context, op operation, path, token string, out any) error {
	key := op.method + " " + path + " " + token

	ch := c.reads.DoChan(key, func() (any, error) {
		return c.send(context.WithoutCancel(ctx), request{op: op, path: path, token: token})
	})

	select {
	case res := <-ch:
		if res.Shared {
			metrics.CourseAPIDeduplicated.WithLabelValues(op.name).Inc()
		}
		if res.Err != nil {
			return res.Err
		}
		return decode(op, res.Val.(*response), out)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) send(ctx context.Context, req request) (*response, error) {
	start := time.Now()
	op := req.op

	ctx, span := tracing.StartSpan(ctx, "courseapi."+op.name,
		attribute.String("http.request.method", op.method),
		attribute.String("url.path", req.path),
	)
	defer span.End()

	var body io.Reader
	switch {
	case req.bodyStream != nil:
		body = req.bodyStream
	case req.body != nil:
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, op.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op.name, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	httpReq.Header.Set("Pragma", "no-cache")
	httpReq.Header.Set("Expires", "0")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, values := range req.header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	tracing.Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		metrics.CourseAPIRequestDuration.WithLabelValues(op.name, "error").Observe(duration)
		metrics.CourseAPIRequestTotal.WithLabelValues(op.name, "error").Inc()
		logger.LogAPICall(op.name, "error", 0, duration, zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, fmt.Errorf("course api %s: %w", op.name, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	duration := metrics.MeasureDuration(start)
	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))

	status := "success"
	if err != nil || httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		status = "error"
		span.SetStatus(codes.Error, strconv.Itoa(httpResp.StatusCode))
	}
	metrics.CourseAPIRequestDuration.WithLabelValues(op.name, status).Observe(duration)
	metrics.CourseAPIRequestTotal.WithLabelValues(op.name, status).Inc()
	logger.LogAPICall(op.name, status, httpResp.StatusCode, duration)

	if err != nil {
		return nil, fmt.Errorf("course api %s: failed to read response: %w", op.name, err)
	}

	return &response{status: httpResp.StatusCode, body: data}, nil
}

func decode(op operation, resp *response, out any) error {
	if resp.status < 200 || resp.status >= 300 {
		return newAPIError(op, resp.status, resp.body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnexpectedResponse, op.name, err)
	}
	return nil
}
