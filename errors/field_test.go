package errors

import (
	"testing"
)

func TestFieldNilError(t *testing.T) {
	if err := Field("name", nil, "unexpected value"); err != nil {
		t.Fatalf("field error of a nil error must be nil, got %+v", err)
	}
}

func TestFieldErrors(t *testing.T) {
	cases := map[string]struct {
		err       error
		fieldName string
		wantErrs  int
	}{
		"nil error has no field errors": {
			err:       nil,
			fieldName: "Name",
			wantErrs:  0,
		},
		"single field error": {
			err:       Field("Name", ErrEmpty, "name is required"),
			fieldName: "Name",
			wantErrs:  1,
		},
		"not matching field name": {
			err:       Field("Surname", ErrEmpty, "surname is required"),
			fieldName: "Name",
			wantErrs:  0,
		},
		"field error in a group": {
			err: Append(
				Field("Name", ErrEmpty, "name is required"),
				Field("Age", ErrInput, "age must be positive"),
			),
			fieldName: "Age",
			wantErrs:  1,
		},
		"field error wrapped": {
			err:       Wrap(Field("Name", ErrEmpty, "name is required"), "inspecting user"),
			fieldName: "Name",
			wantErrs:  1,
		},
		"multiple errors for the same field": {
			err: Append(
				Field("Name", ErrEmpty, "name is required"),
				Field("Name", ErrInput, "name must be ascii"),
			),
			fieldName: "Name",
			wantErrs:  2,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			errs := FieldErrors(tc.err, tc.fieldName)
			if len(errs) != tc.wantErrs {
				t.Fatalf("want %d errors, got %d: %q", tc.wantErrs, len(errs), errs)
			}
		})
	}
}

func TestAppendFieldSkipsNil(t *testing.T) {
	err := AppendField(nil, "Name", nil)
	if err != nil {
		t.Fatalf("appending a nil field error to nil must be nil, got %+v", err)
	}

	err = AppendField(nil, "Name", ErrEmpty)
	if errs := FieldErrors(err, "Name"); len(errs) != 1 {
		t.Fatalf("want a single field error, got %q", errs)
	}
}

func TestFieldErrorIsCoded(t *testing.T) {
	err := Field("Name", ErrEmpty, "name is required")
	if !ErrEmpty.Is(err) {
		t.Fatal("field error must preserve the root cause")
	}
}
