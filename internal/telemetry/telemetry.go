package telemetry

import (
	"fmt"
)

// API is where components report what happened to them. Tests swap in a
// Recorder to assert on the reports.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a failure someone should look at. id names the
	// failing operation in lowercase, ex. "extractor.extract-rows".
	ReportBroken(id string, params ...any)
	// ReportWarning reports something unexpected that did not fail the run.
	ReportWarning(id string, params ...any)
	// ReportDebug is only shown with --verbose.
	ReportDebug(msg string, params ...any)
	// ReportCount reports how many of something a run saw.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with a namespace, ex. "catalog:extractor.extract-rows".
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s:%s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s:%s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s:%s", s.namespace, id), count)
}
