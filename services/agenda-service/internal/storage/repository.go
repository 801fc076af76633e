// Package storage holds the appointment stores the agenda reads and reschedules against.
package storage

import (
	"errors"

	"github.com/md-rashed-zaman/apptdesk/services/agenda-service/internal/model"
)

var ErrNotFound = errors.New("storage: appointment not found")

func notFound(id string) error {
	return &model.RemoteError{Message: "appointment " + id + " not found", Err: ErrNotFound}
}

func remote(err error) error {
	return &model.RemoteError{Err: err}
}
