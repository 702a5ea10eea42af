package errors

import (
	"strings"
	"testing"
)

func TestAppend(t *testing.T) {
	cases := map[string]struct {
		errs     []error
		wantNil  bool
		wantCode uint32
	}{
		"no errors is nil": {
			errs:    nil,
			wantNil: true,
		},
		"only nil errors is nil": {
			errs:    []error{nil, nil},
			wantNil: true,
		},
		"single error keeps its code": {
			errs:     []error{Wrap(ErrNotFound, "missing")},
			wantCode: ErrNotFound.code,
		},
		"first error determines the code": {
			errs: []error{
				Wrap(ErrEmpty, "no name"),
				Wrap(ErrInput, "bad age"),
			},
			wantCode: ErrEmpty.code,
		},
		"nil errors are skipped": {
			errs: []error{
				nil,
				Wrap(ErrState, "already done"),
				nil,
			},
			wantCode: ErrState.code,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := Append(tc.errs...)
			if tc.wantNil {
				if err != nil {
					t.Fatalf("want nil, got %+v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("want an error, got nil")
			}
			if code := abciCode(err); code != tc.wantCode {
				t.Fatalf("want %d code, got %d", tc.wantCode, code)
			}
		})
	}
}

func TestAppendFlattens(t *testing.T) {
	group := Append(
		Wrap(ErrEmpty, "no name"),
		Wrap(ErrInput, "bad age"),
	)
	err := Append(group, Wrap(ErrState, "already done"))
	multi, ok := err.(multiError)
	if !ok {
		t.Fatalf("want a multi error, got %T", err)
	}
	if len(multi) != 3 {
		t.Fatalf("want 3 clubbed errors, got %d", len(multi))
	}
	if !strings.Contains(err.Error(), "3 errors occurred") {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
