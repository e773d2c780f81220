package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"luna.app/internal/core/periodday"
	"luna.app/pkg/dateutil"
)

var registerOnce sync.Once

// registerValidators installs the custom binding tags on Gin's validator
func registerValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err = v.RegisterValidation("flowlevel", validateFlowLevel); err != nil {
			return
		}
		err = v.RegisterValidation("isodate", validateISODate)
	})
	return err
}

func validateFlowLevel(fl validator.FieldLevel) bool {
	return periodday.FlowLevelFromString(fl.Field().String()).IsValid()
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := dateutil.Parse(fl.Field().String())
	return err == nil
}
