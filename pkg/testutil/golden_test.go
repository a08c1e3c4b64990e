package testutil_test

import (
	"testing"

	"github.com/pkgship/pkgship/pkg/testutil"
)

type exampleData struct {
	Name      string `json:"name"`
	Channel   string `json:"channel"`
	Downloads int    `json:"downloads"`
}

func TestAssertGoldenJSON(t *testing.T) {
	data := exampleData{
		Name:      "pkgship",
		Channel:   "stable",
		Downloads: 42,
	}

	testutil.AssertGoldenJSON(t, "test-fixtures/example-golden.json", data)
}

func TestAssertGoldenDiff(t *testing.T) {
	lhs := exampleData{
		Name:      "pkgship",
		Channel:   "stable",
		Downloads: 42,
	}

	rhs := exampleData{
		Name:      "shipyard",
		Channel:   "stable",
		Downloads: 177,
	}

	testutil.AssertGoldenDiffJSON(t, "test-fixtures/example-golden.diff", lhs, rhs)
}
