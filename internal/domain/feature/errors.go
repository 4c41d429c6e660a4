package feature

import "errors"

var (
	ErrFeatureNotFound  = errors.New("feature not found")
	ErrInvalidFeatureID = errors.New("invalid feature id")
	ErrInvalidCategory  = errors.New("invalid feature category")
	ErrInvalidStatus    = errors.New("invalid feature status")
	ErrConfigNotFound   = errors.New("feature config not found")
)
