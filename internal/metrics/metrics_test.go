package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryServesOperationCounts(t *testing.T) {
	r := New()
	r.Operations.WithLabelValues("lookup").Inc()
	r.Operations.WithLabelValues("lookup").Inc()
	r.Errors.WithLabelValues("ENOENT").Inc()
	r.NodeCount.Set(3)
	r.OpenHandles.Set(1)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := new(strings.Builder)
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)

	out := body.String()
	assert.Contains(t, out, `memfs_operations_total{op="lookup"} 2`)
	assert.Contains(t, out, `memfs_errors_total{kind="ENOENT"} 1`)
	assert.Contains(t, out, "memfs_nodes 3")
	assert.Contains(t, out, "memfs_open_handles 1")
}

func TestNewRegistriesAreIndependent(t *testing.T) {
	a := New()
	b := New()
	a.NodeCount.Set(5)
	assert.Equal(t, float64(0), testutil.ToFloat64(b.NodeCount))
	assert.Equal(t, float64(5), testutil.ToFloat64(a.NodeCount))
}
