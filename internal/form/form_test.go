package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDashboardFilterRequest(t *testing.T) {
	ok := &DashboardFilterRequest{
		StartDate:      "2017-01-01",
		EndDate:        "2017-01-01",
		States:         []string{"SP", "RJ"},
		CategoryLabels: []string{"Beleza Saude"},
	}
	require.NoError(t, ok.Validate())
	s, e := ok.Dates()
	assert.Equal(t, s, e)

	bad := []*DashboardFilterRequest{
		{StartDate: "", EndDate: "2017-01-01"},
		{StartDate: "2017-13-01", EndDate: "2017-01-01"},
		{StartDate: "2017-02-01", EndDate: "2017-01-01"},
		{StartDate: "2017-01-01", EndDate: "2017-02-01", States: []string{"sp"}},
		{StartDate: "2017-01-01", EndDate: "2017-02-01", CategoryLabels: []string{""}},
	}
	for i, r := range bad {
		err := r.Validate()
		require.Error(t, err, "case %d", i)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "case %d", i)
	}
}

func TestForecastRequest(t *testing.T) {
	assert.NoError(t, (&ForecastRequest{HorizonMonths: 1, MaxHorizon: 12}).Validate())
	assert.NoError(t, (&ForecastRequest{HorizonMonths: 12, MaxHorizon: 12}).Validate())
	assert.Error(t, (&ForecastRequest{HorizonMonths: 0, MaxHorizon: 12}).Validate())
	assert.Error(t, (&ForecastRequest{HorizonMonths: 13, MaxHorizon: 12}).Validate())
}

func TestViolations(t *testing.T) {
	err := (&DashboardFilterRequest{StartDate: "2017-02-01", EndDate: "2017-01-01", States: []string{"sp"}}).Validate()
	require.Error(t, err)

	v := Violations(err)
	assert.Equal(t, "End date must not be before start date.", v["EndDate"])
	assert.Contains(t, v, "States")
	assert.NotContains(t, v, "StartDate")

	assert.Empty(t, Violations(nil))
}
