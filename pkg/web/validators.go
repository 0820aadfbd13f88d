package web

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/go-petr/bankapp/pkg/moneypkg"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators registers custom binding tags on the gin validator engine.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unsupported validator engine")
			return
		}

		registerErr = v.RegisterValidation("amount", moneypkg.ValidAmount)
	})

	return registerErr
}
