package workflow

import (
	"fmt"
	"imgtool/internal/core/domain"
	"strconv"
	"strings"
)

// ValidateResize checks a resize submission. size is the raw value of the target size input.
func ValidateResize(file *domain.File, size string) (domain.SubmissionRequest, error) {
	if file == nil {
		return domain.SubmissionRequest{}, domain.ErrMissingFile
	}

	kb, err := strconv.Atoi(strings.TrimSpace(size))
	if err != nil {
		return domain.SubmissionRequest{}, fmt.Errorf("%w: %q is not an integer", domain.ErrOutOfRange, size)
	}

	if kb < domain.MinTargetSizeKB || kb > domain.MaxTargetSizeKB {
		return domain.SubmissionRequest{}, fmt.Errorf("%w: %d", domain.ErrOutOfRange, kb)
	}

	return domain.SubmissionRequest{File: *file, Parameter: domain.TargetSizeKB(kb)}, nil
}

// ValidateConvert checks a convert submission. The format comes from a closed selector and is taken as is.
func ValidateConvert(file *domain.File, format domain.Format) (domain.SubmissionRequest, error) {
	if file == nil {
		return domain.SubmissionRequest{}, domain.ErrMissingFile
	}

	return domain.SubmissionRequest{File: *file, Parameter: domain.TargetFormat(format)}, nil
}
