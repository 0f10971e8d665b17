package marketdata

import (
	"context"
	"fmt"

	"github.com/xhhuango/json"

	"github.com/bcdannyboy/fxvol/models"
)

// Provider serves security field data. Implementations may chain a fallback
// source behind themselves via Secondary.
type Provider interface {
	FetchQuotes(ctx context.Context, ids []string) ([]models.SecurityData, error)
	Secondary() Provider
}

// TransientProviderError marks feed failures worth retrying.
type TransientProviderError struct {
	Op  string
	Err error
}

func (e *TransientProviderError) Error() string {
	return fmt.Sprintf("transient provider error during %s: %v", e.Op, e.Err)
}

func (e *TransientProviderError) Unwrap() error { return e.Err }

func (e *TransientProviderError) Transient() bool { return true }

// PermanentDataError marks failures a retry cannot fix, like an unknown
// security or a malformed payload.
type PermanentDataError struct {
	Op  string
	Err error
}

func (e *PermanentDataError) Error() string {
	return fmt.Sprintf("permanent data error during %s: %v", e.Op, e.Err)
}

func (e *PermanentDataError) Unwrap() error { return e.Err }

func (e *PermanentDataError) Transient() bool { return false }

// ParseFieldData decodes a feed payload of security records. Null field
// values survive decoding as nil pointers.
func ParseFieldData(payload []byte) ([]models.SecurityData, error) {
	var records []models.SecurityData
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, &PermanentDataError{Op: "parse field data", Err: err}
	}
	return records, nil
}
