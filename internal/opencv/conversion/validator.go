package conversion

import (
	"fmt"

	"gocv.io/x/gocv"
)

// maxDimension matches the frame limit.
const maxDimension = 32768

func ValidateMat(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("mat is empty for operation: %s", operation)
	}

	if err := ValidateDimensions(mat.Cols(), mat.Rows(), operation); err != nil {
		return err
	}

	if _, err := FormatForMatType(mat.Type()); err != nil {
		return fmt.Errorf("%w for operation: %s", err, operation)
	}

	return nil
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s", width, height, operation)
	}

	if width > maxDimension || height > maxDimension {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}
