package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Defaults(t *testing.T) {
	q := Params{}.Query(nil)
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "20", q.Get("per_page"))
}

func TestQuery_CapsPerPage(t *testing.T) {
	q := Params{Page: 3, PerPage: 500}.Query(nil)
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "100", q.Get("per_page"))
}

func TestQuery_MergesExistingValues(t *testing.T) {
	q := url.Values{}
	q.Set("q", "mug")

	q = Params{Page: 2, PerPage: 10}.Query(q)
	assert.Equal(t, "mug", q.Get("q"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "10", q.Get("per_page"))
}

func TestQuery_NegativeValuesFallBack(t *testing.T) {
	q := Params{Page: -1, PerPage: -5}.Query(nil)
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "20", q.Get("per_page"))
}
