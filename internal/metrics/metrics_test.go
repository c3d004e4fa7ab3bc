package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesLifecycleCollectors(t *testing.T) {
	m := New()
	m.Finalized.WithLabelValues("viewed", "scope_exit").Inc()
	m.Views.Add(2)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Views))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Finalized.WithLabelValues("viewed", "scope_exit")))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `snapconnect_items_finalized_total{reason="viewed",trigger="scope_exit"} 1`)
	require.Contains(t, string(body), "snapconnect_views_recorded_total 2")
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Views.Inc()
	require.Equal(t, 0.0, testutil.ToFloat64(b.Views))
}
