package report

import "errors"

var ErrNoEmployees = errors.New("no employees to report on")
