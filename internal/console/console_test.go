package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ride-ledger/internal/ledger"
	"github.com/example/ride-ledger/internal/logging"
)

func run(t *testing.T, lines ...string) (string, *ledger.Service) {
	t.Helper()
	l := ledger.New(ledger.Options{Logger: logging.Discard()})
	var out bytes.Buffer
	c := New(l, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, 4)
	require.NoError(t, c.Run(context.Background()))
	return out.String(), l
}

func TestConsoleAssignFareComplete(t *testing.T) {
	out, l := run(t,
		"Dana", "Blue Civic", "0 0", "0",
		"Pat", "1 1", "4 5", "0",
		"1", "0", // request ride for passenger 0
		"2", "0", // fare
		"4", "0", // complete
		"5",
		"7",
	)
	assert.Contains(t, out, "Driver added successfully! (Total Drivers: 1)")
	assert.Contains(t, out, "Ride assigned to Dana. Driver location: (0.00, 0.00)")
	assert.Contains(t, out, "Distance Travelled: 5.00 km")
	assert.Contains(t, out, "Ride Fare: $15.00")
	assert.Contains(t, out, "Ride completed successfully! Driver is now available.")
	assert.Contains(t, out, "Index: 0, Name: Dana, Car: Blue Civic, Location: (0.00, 0.00), Availability: Available")
	assert.Contains(t, out, "Exiting program.")
	assert.True(t, l.ListDrivers()[0].Available)
}

func TestConsoleAutoCancel(t *testing.T) {
	out, _ := run(t,
		"Dana", "Civic", "10 10", "0",
		"Pat", "0 0", "1 1", "0",
		"1", "0",
		"2", "0",
		"6",
		"7",
	)
	assert.Contains(t, out, "Ride automatically cancelled. Distance between driver and passenger is more than 4 km.")
	assert.Contains(t, out, "No valid ride to calculate fare for.")
	assert.Contains(t, out, "Ride Cancelled: Yes")
}

func TestConsoleCancelAndErrors(t *testing.T) {
	out, _ := run(t,
		"Dana", "Civic", "0 0", "1",
		"Eli", "Golf", "0 1", "0",
		"Pat", "1 1", "4 5", "0",
		"1", "9", // bad index
		"3", "0", // nothing to cancel
		"1", "0",
		"3", "0",
		"4", "0",
		"8",
		"7",
	)
	assert.Contains(t, out, "Invalid passenger index!")
	assert.Contains(t, out, "No ride to cancel.")
	assert.Contains(t, out, "Ride canceled successfully!")
	assert.Contains(t, out, "No valid ride to complete.")
	assert.Contains(t, out, "Invalid choice. Please try again.")
	assert.Contains(t, out, "(Total Drivers: 2)")
}

func TestConsoleRepromptsBadInput(t *testing.T) {
	out, l := run(t,
		"", "Dana", "Civic", "zero zero", "0,0", "maybe", "0",
		"Pat", "1 1", "4 5", "0",
		"x", "7",
	)
	assert.Contains(t, out, "Value cannot be empty.")
	assert.Contains(t, out, "Invalid location")
	assert.Contains(t, out, "Invalid number.")
	require.Len(t, l.ListDrivers(), 1)
	assert.Equal(t, "Dana", l.ListDrivers()[0].Name)
}

func TestConsoleStopsAtEndOfInput(t *testing.T) {
	out, _ := run(t, "Dana", "Civic", "0 0")
	assert.Contains(t, out, "Do you want to add another driver?")
}

func TestConsoleRejectsNonFiniteCoordinates(t *testing.T) {
	out, l := run(t,
		"Dana", "Civic", "NaN 0", "Inf 1", "1e400 0", "0 0", "0",
		"Pat", "1 1", "4 5", "0",
		"7",
	)
	assert.Equal(t, 3, strings.Count(out, "Invalid location"))
	require.Len(t, l.ListDrivers(), 1)
	assert.Equal(t, 0.0, l.ListDrivers()[0].Location.X)
}

func TestParseLocation(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"1.5 -2", true},
		{"3,4", true},
		{"1", false},
		{"nan 0", false},
		{"0 -inf", false},
		{"1e400 0", false},
	}
	for _, tc := range cases {
		_, ok := parseLocation(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}
