package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Difficulty levels accepted by the course API
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Difficulties lists the levels in display order
var Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

// InstructorRef is the instructor attached to a course listing
type InstructorRef struct {
	Username   string `json:"username"`
	IsVerified bool   `json:"isVerified"`
}

// UnmarshalJSON accepts both the catalogue shape ({"username", "isVerified"})
// and the bare username string returned when a course is created.
func (r *InstructorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = InstructorRef{Username: name}
		return nil
	}

	type plain InstructorRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = InstructorRef(p)
	return nil
}

// Course is a purchasable listing. It is read-only on this side.
type Course struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Instructor  InstructorRef `json:"instructor"`
	Difficulty  string        `json:"difficulty"`
	Price       float64       `json:"price"`
	// Rating is the review average; Ratings is the value set at creation.
	Rating    float64  `json:"rating"`
	Ratings   float64  `json:"ratings"`
	VideoURLs []string `json:"video_urls"`
	CreatedAt string   `json:"created_at,omitempty"`
	Reviews   []Review `json:"reviews,omitempty"`
}

// DisplayRating prefers the review average over the creation-time rating
func (c Course) DisplayRating() float64 {
	if c.Rating > 0 {
		return c.Rating
	}
	return c.Ratings
}

// CreateCourseRequest is the body of POST /create-course
type CreateCourseRequest struct {
	Title       string   `json:"title" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"required,min=10"`
	Difficulty  string   `json:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	Price       float64  `json:"price" binding:"gte=0"`
	Ratings     float64  `json:"ratings" binding:"gte=0,lte=5"`
	VideoURLs   []string `json:"video_urls" binding:"required,min=1,dive,url"`
}

// CreateCourseResponse is returned by POST /create-course
type CreateCourseResponse struct {
	Message string `json:"message"`
	Course  Course `json:"course"`
}

// CourseForm is the instructor's course form. Video URLs are entered one per
// line; an uploaded file adds one more.
type CourseForm struct {
	Title       string  `form:"title" binding:"required,min=1,max=100"`
	Description string  `form:"description" binding:"required,min=10"`
	Difficulty  string  `form:"difficulty" binding:"required,oneof=beginner intermediate advanced"`
	Price       float64 `form:"price" binding:"gte=0"`
	Ratings     float64 `form:"ratings" binding:"gte=0,lte=5"`
	VideoURLs   string  `form:"video_urls" binding:"max=10000"`
}

// Request converts the form into an API request, appending extra URLs
func (f CourseForm) Request(extraURLs ...string) CreateCourseRequest {
	urls := []string{}
	for _, line := range strings.Split(f.VideoURLs, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	urls = append(urls, extraURLs...)

	return CreateCourseRequest{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Difficulty:  f.Difficulty,
		Price:       f.Price,
		Ratings:     f.Ratings,
		VideoURLs:   urls,
	}
}

// UploadVideoResponse is returned by POST /upload-video
type UploadVideoResponse struct {
	Message  string `json:"message"`
	VideoURL string `json:"video_url"`
	Title    string `json:"title"`
}

// CourseFilter narrows the catalogue. Zero values mean "no constraint".
type CourseFilter struct {
	Search    string   `form:"q" binding:"max=200"`
	Levels    []string `form:"level" binding:"dive,oneof=beginner intermediate advanced"`
	MinPrice  float64  `form:"min_price" binding:"gte=0"`
	MaxPrice  float64  `form:"max_price" binding:"gte=0"`
	MinRating float64  `form:"min_rating" binding:"gte=0,lte=5"`
}

// Matches reports whether the course passes every set constraint
func (f CourseFilter) Matches(c Course) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(c.Title), q) &&
			!strings.Contains(strings.ToLower(c.Description), q) {
			return false
		}
	}

	if len(f.Levels) > 0 {
		found := false
		for _, level := range f.Levels {
			if strings.EqualFold(level, c.Difficulty) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && c.Price > f.MaxPrice {
		return false
	}

	return c.DisplayRating() >= f.MinRating
}

// Apply returns the matching courses in their original order
func (f CourseFilter) Apply(courses []Course) []Course {
	out := make([]Course, 0, len(courses))
	for _, c := range courses {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
