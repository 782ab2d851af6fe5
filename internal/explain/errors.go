package explain

import "errors"

var errEmptyExplanation = errors.New("provider returned an empty explanation")
