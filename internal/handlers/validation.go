package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/fitforge/fitforge-web/internal/validation"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the custom form tags to gin's validator. Safe to
// call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		err = validation.Register(v)
	})
	return err
}

// problemsFor converts a binding error into form messages
func problemsFor(err error, maxBytes int64) []validation.Problem {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		limit := maxBytes
		if limit == 0 {
			limit = tooLarge.Limit
		}
		return []validation.Problem{{Field: "file", Message: fmt.Sprintf("Upload must not exceed %d MB", limit>>20)}}
	}
	return validation.Problems(err)
}

func summary(problems []validation.Problem) string {
	msg := ""
	for i, p := range problems {
		if i > 0 {
			msg += "; "
		}
		msg += p.Message
	}
	return msg
}
