package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrStatusConflict = errors.New("Status conflict")
