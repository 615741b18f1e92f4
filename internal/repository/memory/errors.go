package memory

import "errors"

var errDuplicateHabit = errors.New("habit id already exists")
