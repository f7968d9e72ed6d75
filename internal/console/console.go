// Package console is the interactive menu front end for the ledger. It owns
// prompting, input parsing and formatting; every decision is the ledger's.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/example/ride-ledger/internal/ledger"
	"github.com/example/ride-ledger/internal/models"
)

type Console struct {
	ledger      *ledger.Service
	in          *bufio.Scanner
	out         io.Writer
	maxPickupKm float64
}

func New(l *ledger.Service, in io.Reader, out io.Writer, maxPickupKm float64) *Console {
	return &Console{ledger: l, in: bufio.NewScanner(in), out: out, maxPickupKm: maxPickupKm}
}

// Run registers drivers and passengers, then serves the menu until the user
// exits or input ends.
func (c *Console) Run(ctx context.Context) error {
	c.printf("\nStep 1: Add Drivers\n")
	if err := c.addDrivers(); err != nil {
		return ignoreEOF(err)
	}
	c.printf("\nStep 2: Add Passengers\n")
	if err := c.addPassengers(); err != nil {
		return ignoreEOF(err)
	}
	return ignoreEOF(c.menu(ctx))
}

func (c *Console) addDrivers() error {
	for {
		name, err := c.promptText("\nEnter Driver Name: ")
		if err != nil {
			return err
		}
		car, err := c.promptText("Enter Car Details: ")
		if err != nil {
			return err
		}
		loc, err := c.promptLocation("Enter Driver Location (x y): ")
		if err != nil {
			return err
		}
		c.ledger.AddDriver(name, car, loc)
		c.printf("Driver added successfully! (Total Drivers: %d)\n", len(c.ledger.ListDrivers()))

		more, err := c.promptYesNo("\nDo you want to add another driver? (1 for Yes, 0 for No): ")
		if err != nil || !more {
			return err
		}
	}
}

func (c *Console) addPassengers() error {
	for {
		name, err := c.promptText("\nEnter Passenger Name: ")
		if err != nil {
			return err
		}
		pickup, err := c.promptLocation("Enter Initial Location (x y): ")
		if err != nil {
			return err
		}
		dest, err := c.promptLocation("Enter Destination Location (x y): ")
		if err != nil {
			return err
		}
		c.ledger.AddPassenger(name, pickup, dest)
		c.printf("Passenger added successfully! (Total Passengers: %d)\n", len(c.ledger.ListPassengers()))

		more, err := c.promptYesNo("\nDo you want to add another passenger? (1 for Yes, 0 for No): ")
		if err != nil || !more {
			return err
		}
	}
}

func (c *Console) menu(ctx context.Context) error {
	for {
		c.printf("\nMain Menu\n")
		c.printf("1. Request a Ride\n")
		c.printf("2. Calculate Ride Fare\n")
		c.printf("3. Cancel a Ride\n")
		c.printf("4. Complete a Ride\n")
		c.printf("5. Display Drivers List\n")
		c.printf("6. Display Passengers List\n")
		c.printf("7. Exit\n")
		choice, err := c.promptInt("Enter your choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = c.requestRide(ctx)
		case 2:
			err = c.computeFare()
		case 3:
			err = c.cancelRide(ctx)
		case 4:
			err = c.completeRide(ctx)
		case 5:
			c.displayDrivers()
		case 6:
			c.displayPassengers()
		case 7:
			c.printf("Exiting program.\n")
			return nil
		default:
			c.printf("Invalid choice. Please try again.\n")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) requestRide(ctx context.Context) error {
	if len(c.ledger.ListPassengers()) == 0 || len(c.ledger.ListDrivers()) == 0 {
		c.printf("Not enough passengers or drivers to request a ride.\n")
		return nil
	}
	idx, err := c.promptInt("Enter Passenger Index: ")
	if err != nil {
		return err
	}
	c.printf("Finding nearest driver...\n")
	out, err := c.ledger.RequestRide(ctx, idx)
	switch {
	case errors.Is(err, ledger.ErrInvalidIndex):
		c.printf("Invalid passenger index!\n")
		return nil
	case errors.Is(err, ledger.ErrRideInProgress):
		c.printf("Passenger already has an active ride. Complete or cancel it first.\n")
		return nil
	case errors.Is(err, ledger.ErrNoDriversOrPassengers):
		c.printf("Not enough passengers or drivers to request a ride.\n")
		return nil
	case err != nil:
		return err
	}

	switch out.Status {
	case models.OutcomeNoDriver:
		c.printf("No available drivers at the moment. Please try again later.\n")
	case models.OutcomeAutoCancelled:
		c.printf("Ride automatically cancelled. Distance between driver and passenger is more than %g km.\n", c.maxPickupKm)
	case models.OutcomeAssigned:
		d := c.ledger.ListDrivers()[out.DriverIndex]
		c.printf("Nearest Driver found! Assigning ride...\n")
		c.printf("Ride assigned to %s. Driver location: (%.2f, %.2f)\n", d.Name, d.Location.X, d.Location.Y)
	}
	return nil
}

func (c *Console) computeFare() error {
	idx, err := c.promptInt("Enter Passenger Index: ")
	if err != nil {
		return err
	}
	rc, err := c.ledger.ComputeFare(idx)
	switch {
	case errors.Is(err, ledger.ErrInvalidIndex):
		c.printf("Invalid passenger index!\n")
	case err != nil:
		c.printf("No valid ride to calculate fare for.\n")
	default:
		c.printReceipt(rc)
	}
	return nil
}

func (c *Console) cancelRide(ctx context.Context) error {
	idx, err := c.promptInt("Enter Passenger Index: ")
	if err != nil {
		return err
	}
	_, err = c.ledger.CancelRide(ctx, idx)
	switch {
	case errors.Is(err, ledger.ErrInvalidIndex):
		c.printf("Invalid passenger index!\n")
	case err != nil:
		c.printf("No ride to cancel.\n")
	default:
		c.printf("Ride canceled successfully!\n")
	}
	return nil
}

func (c *Console) completeRide(ctx context.Context) error {
	idx, err := c.promptInt("Enter Passenger Index: ")
	if err != nil {
		return err
	}
	rc, err := c.ledger.CompleteRide(ctx, idx)
	switch {
	case errors.Is(err, ledger.ErrInvalidIndex):
		c.printf("Invalid passenger index!\n")
	case err != nil:
		c.printf("No valid ride to complete.\n")
	default:
		c.printf("Ride completed successfully! Driver is now available.\n")
		c.printReceipt(rc)
	}
	return nil
}

func (c *Console) printReceipt(rc models.Receipt) {
	c.printf("Distance Travelled: %.2f km\n", rc.TripDistanceKm)
	c.printf("Ride Fare: $%.2f\n", rc.Fare)
}

func (c *Console) displayDrivers() {
	c.printf("\nDrivers List:\n")
	for _, d := range c.ledger.ListDrivers() {
		availability := "Not Available"
		if d.Available {
			availability = "Available"
		}
		c.printf("Index: %d, Name: %s, Car: %s, Location: (%.2f, %.2f), Availability: %s\n",
			d.Index, d.Name, d.CarDetails, d.Location.X, d.Location.Y, availability)
	}
}

func (c *Console) displayPassengers() {
	c.printf("\nPassengers List:\n")
	for _, p := range c.ledger.ListPassengers() {
		cancelled := "No"
		if p.RideCancelled {
			cancelled = "Yes"
		}
		c.printf("Index: %d, Name: %s, Initial Location: (%.2f, %.2f), Destination: (%.2f, %.2f), Ride Cancelled: %s\n",
			p.Index, p.Name, p.Pickup.X, p.Pickup.Y, p.Destination.X, p.Destination.Y, cancelled)
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) promptText(prompt string) (string, error) {
	for {
		c.printf("%s", prompt)
		line, err := c.readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		c.printf("Value cannot be empty. Please try again.\n")
	}
}

func (c *Console) promptInt(prompt string) (int, error) {
	for {
		c.printf("%s", prompt)
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil {
			return n, nil
		}
		c.printf("Invalid number. Please try again.\n")
	}
}

func (c *Console) promptYesNo(prompt string) (bool, error) {
	for {
		n, err := c.promptInt(prompt)
		if err != nil {
			return false, err
		}
		switch n {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
		c.printf("Please enter 1 or 0.\n")
	}
}

func (c *Console) promptLocation(prompt string) (models.Location, error) {
	for {
		c.printf("%s", prompt)
		line, err := c.readLine()
		if err != nil {
			return models.Location{}, err
		}
		if loc, ok := parseLocation(line); ok {
			return loc, nil
		}
		c.printf("Invalid location, expected two numbers \"x y\". Please try again.\n")
	}
}

func parseLocation(s string) (models.Location, bool) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) != 2 {
		return models.Location{}, false
	}
	x, errX := strconv.ParseFloat(fields[0], 64)
	y, errY := strconv.ParseFloat(fields[1], 64)
	if errX != nil || errY != nil || !finite(x) || !finite(y) {
		return models.Location{}, false
	}
	return models.Location{X: x, Y: y}, true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
