// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package enrollment

import (
	"errors"
	"fmt"
	"slices"

	"github.com/canonical/tenant-access-service/internal/types"
)

const (
	ProgramsPath    = "/programs"
	OrientationPath = "/enrollment/orientation"
	DocumentsPath   = "/enrollment/documents"
	CoursesPath     = "/lms/courses"
	// ErrorPath is where the gate sends users when their enrollment cannot
	// be loaded.
	ErrorPath = "/enrollment/unavailable"
)

var ErrInvalidTransition = errors.New("invalid enrollment transition")

// Action is the next step a user must take.
type Action struct {
	Label       string `json:"label"`
	Target      string `json:"target"`
	Description string `json:"description"`
}

var (
	actionOrientation = Action{
		Label:       "Complete orientation",
		Target:      OrientationPath,
		Description: "Please complete orientation first.",
	}
	actionDocuments = Action{
		Label:       "Submit required documents",
		Target:      DocumentsPath,
		Description: "Please upload the documents required by your program.",
	}
	actionBegin = Action{
		Label:       "Begin your first course",
		Target:      CoursesPath,
		Description: "You are all set, start your first course.",
	}
)

// NextRequiredAction returns the next onboarding step of e. Orientation
// always comes first, then documents, whatever order they were actually
// completed in. Missing data counts as not done.
func NextRequiredAction(e *types.Enrollment) Action {
	switch {
	case e == nil || e.OrientationCompletedAt == nil:
		return actionOrientation
	case e.DocumentsSubmittedAt == nil:
		return actionDocuments
	default:
		return actionBegin
	}
}

var progression = []types.EnrollmentStatus{
	types.EnrollmentApplied,
	types.EnrollmentApproved,
	types.EnrollmentPaid,
	types.EnrollmentConfirmed,
	types.EnrollmentOrientationComplete,
	types.EnrollmentDocumentsComplete,
	types.EnrollmentActive,
}

// rank is the position of s in the progression, -1 when unknown.
func rank(s types.EnrollmentStatus) int {
	return slices.Index(progression, s)
}

// NextStatus returns the only status s may move to.
func NextStatus(s types.EnrollmentStatus) (types.EnrollmentStatus, bool) {
	i := rank(s)
	if i < 0 || i == len(progression)-1 {
		return "", false
	}
	return progression[i+1], true
}

func canTransition(from, to types.EnrollmentStatus) bool {
	next, ok := NextStatus(from)
	return ok && next == to
}

// Reconcile lists the ways the coarse status of e disagrees with its gating
// timestamps. Nothing is returned for a consistent record.
func Reconcile(e *types.Enrollment) []string {
	if e == nil {
		return nil
	}

	var issues []string

	r := rank(e.Status)
	if r < 0 {
		return []string{fmt.Sprintf("unknown status %q", e.Status)}
	}

	orientationDone := e.OrientationCompletedAt != nil
	documentsDone := e.DocumentsSubmittedAt != nil

	if r >= rank(types.EnrollmentOrientationComplete) && !orientationDone {
		issues = append(issues, fmt.Sprintf("status %s without orientation timestamp", e.Status))
	}
	if r < rank(types.EnrollmentOrientationComplete) && orientationDone {
		issues = append(issues, fmt.Sprintf("orientation timestamp set while status is %s", e.Status))
	}
	if r >= rank(types.EnrollmentDocumentsComplete) && !documentsDone {
		issues = append(issues, fmt.Sprintf("status %s without documents timestamp", e.Status))
	}
	if r < rank(types.EnrollmentDocumentsComplete) && documentsDone {
		issues = append(issues, fmt.Sprintf("documents timestamp set while status is %s", e.Status))
	}

	return issues
}
