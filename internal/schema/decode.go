package schema

import (
	"fmt"

	"github.com/phoenixqa/smartcase/internal/domain/testgen"
)

// DecodePlain turns raw model output text into validated plain test cases.
// It returns ErrInvalidResponse when the text holds no usable array, or when
// the array is non-empty but validation rejects every record. An empty array
// is an empty success.
func DecodePlain(text string) ([]testgen.PlainTestCase, []Rejection, error) {
	data, err := ExtractArray(text)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", testgen.ErrInvalidResponse, err)
	}
	cases, rejections, err := ParsePlainCases(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", testgen.ErrInvalidResponse, err)
	}
	if len(cases) == 0 && len(rejections) > 0 {
		return nil, rejections, fmt.Errorf("%w: all %d records failed validation", testgen.ErrInvalidResponse, len(rejections))
	}
	return cases, rejections, nil
}

// DecodeBDD is the BDD counterpart of DecodePlain.
func DecodeBDD(text string) ([]testgen.BDDScenario, []Rejection, error) {
	data, err := ExtractArray(text)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", testgen.ErrInvalidResponse, err)
	}
	scenarios, rejections, err := ParseBDDScenarios(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", testgen.ErrInvalidResponse, err)
	}
	if len(scenarios) == 0 && len(rejections) > 0 {
		return nil, rejections, fmt.Errorf("%w: all %d records failed validation", testgen.ErrInvalidResponse, len(rejections))
	}
	return scenarios, rejections, nil
}
