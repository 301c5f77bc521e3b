package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/prefs/prefs.go
//   type NodePrefs struct {
//       ...
//       BW       float64 `json:"bw" validate:"lora_bw"`
//       DeviceID string  `json:"device_id,omitempty" validate:"omitempty,uuid4"`
//   }
//
// Custom tags:
//   channel_psk  base64 encoding of a 128 or 256 bit channel key
//   lora_bw      one of the LoRa bandwidths in kHz

import (
	"encoding/base64"
	"math"
	"sync"

	"github.com/go-playground/validator/v10"
)

//nolint:gochecknoglobals // immutable list of LoRa bandwidths in kHz.
var loraBandwidths = []float64{7.8, 10.4, 15.6, 20.8, 31.25, 41.7, 62.5, 125, 250, 500}

// validatorInstance is a shared validator for the application.
// It is initialized once and reused to avoid repeated allocations.
//
//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails for empty tags or nil funcs.
		_ = validatorInst.RegisterValidation("channel_psk", channelPSK)
		_ = validatorInst.RegisterValidation("lora_bw", loraBW)
	})
	return validatorInst
}

func channelPSK(fl validator.FieldLevel) bool {
	key, err := base64.StdEncoding.DecodeString(fl.Field().String())
	if err != nil {
		return false
	}
	return len(key) == 16 || len(key) == 32
}

func loraBW(fl validator.FieldLevel) bool {
	bw := fl.Field().Float()
	for _, v := range loraBandwidths {
		if math.Abs(bw-v) < 0.01 {
			return true
		}
	}
	return false
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}
