package signage

import (
	"fmt"

	"menuboard/internal"
)

type StatusKind string

const (
	StatusLoading StatusKind = "loading"
	StatusOK      StatusKind = "ok"
	StatusEmpty   StatusKind = "empty"
	StatusError   StatusKind = "error"
)

// Status is the line of copy under the rotation.
type Status struct {
	Kind     StatusKind           `json:"kind"`
	Failure  internal.FailureKind `json:"failure"`
	Headline string               `json:"headline"`
	Detail   string               `json:"detail,omitempty"`
	Stale    bool                 `json:"stale"`
}

func loadingStatus() Status {
	return Status{Kind: StatusLoading, Failure: internal.FailureNone, Headline: "CARGANDO PROMOS…"}
}

func okStatus(n int) Status {
	return Status{Kind: StatusOK, Failure: internal.FailureNone, Headline: fmt.Sprintf("OK · %d promos", n)}
}

func emptyStatus() Status {
	return Status{Kind: StatusEmpty, Failure: internal.FailureEmpty, Headline: "SIN PROMOS ACTIVAS"}
}

// errorStatus keeps the screen readable; stale means older promos are
// still rotating.
func errorStatus(kind internal.FailureKind, stale bool) Status {
	return Status{Kind: StatusError, Failure: kind, Headline: "ERROR CARGANDO PROMOS", Detail: "Revisá el Sheet o conexión.", Stale: stale}
}
